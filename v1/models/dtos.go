package models

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone,omitempty"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateOrganisationRequest is the body of POST /api/organisations
type CreateOrganisationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddOrganisationUserRequest is the body of POST /api/organisations/:orgId/users
type AddOrganisationUserRequest struct {
	UserID string `json:"userId"`
}

// UserResponse carries the public user fields. The password hash is never
// part of any response.
type UserResponse struct {
	UserID    string  `json:"userId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
}

// PublicUser maps a User entity to its public response fields
func PublicUser(u *User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// AuthData is the data payload returned by register and login
type AuthData struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// OrganisationResponse carries the public organisation fields
type OrganisationResponse struct {
	OrgID       string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OrganisationListData wraps the organisation collection payload
type OrganisationListData struct {
	Organisations []OrganisationResponse `json:"organisations"`
}
