package models

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/orgdir/identity-backend/shared/utils"
)

// Field rules are static per operation and evaluated eagerly: every violation
// is collected so one response reports all offending fields at once.

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func requireString(errs []utils.FieldError, field, value string, min, max int) []utils.FieldError {
	if value == "" {
		return append(errs, utils.FieldError{Field: field, Message: fmt.Sprintf("%s is required", field)})
	}
	// Length bounds count characters, not bytes
	if utf8.RuneCountInString(value) < min {
		return append(errs, utils.FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s length must be at least %d characters long", field, min),
		})
	}
	if utf8.RuneCountInString(value) > max {
		return append(errs, utils.FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s length must be less than or equal to %d characters long", field, max),
		})
	}
	return errs
}

func requireEmail(errs []utils.FieldError, value string) []utils.FieldError {
	if value == "" {
		return append(errs, utils.FieldError{Field: "email", Message: "email is required"})
	}
	if !emailPattern.MatchString(value) {
		return append(errs, utils.FieldError{Field: "email", Message: "email must be a valid email"})
	}
	return errs
}

// maxPasswordBytes is the bcrypt input limit. A password within the 30-rune
// bound can still exceed it when multibyte, so the byte size is checked
// separately.
const maxPasswordBytes = 72

// ValidateRegisterRequest checks the registration field rules
func ValidateRegisterRequest(req *RegisterRequest) []utils.FieldError {
	var errs []utils.FieldError
	errs = requireString(errs, "firstName", req.FirstName, 3, 30)
	errs = requireString(errs, "lastName", req.LastName, 3, 30)
	errs = requireEmail(errs, req.Email)
	errs = requireString(errs, "password", req.Password, 6, 30)
	if len(req.Password) > maxPasswordBytes {
		errs = append(errs, utils.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes),
		})
	}
	// phone is optional with no shape constraints
	return errs
}

// ValidateLoginRequest checks the login field rules
func ValidateLoginRequest(req *LoginRequest) []utils.FieldError {
	var errs []utils.FieldError
	errs = requireEmail(errs, req.Email)
	if req.Password == "" {
		errs = append(errs, utils.FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// ValidateCreateOrganisationRequest checks the organisation field rules
func ValidateCreateOrganisationRequest(req *CreateOrganisationRequest) []utils.FieldError {
	var errs []utils.FieldError
	errs = requireString(errs, "name", req.Name, 3, 255)
	// description is optional
	return errs
}
