package models

// User represents a registered identity. The password column holds a bcrypt
// hash only; the plaintext never reaches persistence.
type User struct {
	UserID    string  `gorm:"primarykey;column:user_id" json:"userId"`
	FirstName string  `gorm:"column:first_name;not null" json:"firstName"`
	LastName  string  `gorm:"column:last_name;not null" json:"lastName"`
	Email     string  `gorm:"column:email;not null;unique" json:"email"`
	Password  string  `gorm:"column:password;not null" json:"-"`
	Phone     *string `gorm:"column:phone" json:"phone,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (User) TableName() string {
	return "users"
}

// Organisation represents a tenant. UserID records the creating user; it is
// attribution only and grants no visibility by itself.
type Organisation struct {
	OrgID       string `gorm:"primarykey;column:org_id" json:"orgId"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	UserID      string `gorm:"column:user_id;not null" json:"userId"`
	BaseModel
}

// TableName sets the table name for GORM
func (Organisation) TableName() string {
	return "organisations"
}

// OrganisationUser is the membership join row. The composite primary key
// makes a membership unique per (user, organisation) pair.
type OrganisationUser struct {
	UserID string `gorm:"primarykey;column:user_id" json:"userId"`
	OrgID  string `gorm:"primarykey;column:org_id" json:"orgId"`
	BaseModel

	User         User         `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Organisation Organisation `gorm:"foreignKey:OrgID;references:OrgID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name for GORM
func (OrganisationUser) TableName() string {
	return "organisation_users"
}
