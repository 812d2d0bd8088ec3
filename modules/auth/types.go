// Package auth implements registration, credential and social login, token
// refresh, password recovery, and the request authorization layer for both
// individual users and organisations.
package auth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// UserType discriminates the kinds of principals that can authenticate.
type UserType int

const (
	UserTypeSuperAdmin   UserType = 1
	UserTypeIndividual   UserType = 2
	UserTypeOrganisation UserType = 3
)

func (t UserType) Valid() bool {
	return t == UserTypeSuperAdmin || t == UserTypeIndividual || t == UserTypeOrganisation
}

// Gender is stored as an integer code.
type Gender int

const (
	GenderMale      Gender = 1
	GenderFemale    Gender = 2
	GenderNonBinary Gender = 3
	GenderOthers    Gender = 4
)

func (g Gender) Valid() bool {
	return g >= GenderMale && g <= GenderOthers
}

// IndividualRoleName is the role lazily created for individual registrations.
const IndividualRoleName = "Individual-User"

// User is an individual account, registered directly or through an OAuth
// provider. OAuth-created users have no email of their own; the address the
// provider reported lives in OAuthEmail.
type User struct {
	ID               uuid.UUID
	FirstName        string
	MiddleName       string
	LastName         string
	Title            string
	OrganisationName string
	Email            string
	UserType         UserType
	Gender           Gender
	DateOfBirth      string // ISO 8601 date, empty when unknown
	CountryCode      string
	CountryCodeStr   string
	CellPhoneNumber1 string
	CellPhoneNumber2 string
	Landline         string
	PasswordHash     string
	RoleID           *uuid.UUID
	ProfilePicture   string

	OAuthProvider string
	OAuthID       string
	OAuthEmail    string
	OAuthDetails  []byte // raw provider response, JSON
}

// Organisation is a company account.
type Organisation struct {
	ID               uuid.UUID
	OrganisationName string
	CEOFirstName     string
	CEOLastName      string
	Email            string
	EstablishedYear  int
	Country          string
	NoOfEmployee     EmployeeRange
	WebsiteLink      string
	LinkedIn         string
	PasswordHash     string
	ProfilePicture   string
}

// EmployeeRange is a headcount band. Max is nil for an open upper bound.
type EmployeeRange struct {
	Min int
	Max *int
}

// ParseEmployeeRange parses the "[min,max]" form used on registration, where
// max may be empty for an unbounded band.
func ParseEmployeeRange(s string) (EmployeeRange, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	parts := strings.SplitN(trimmed, ",", 2)
	if len(parts) != 2 {
		return EmployeeRange{}, fmt.Errorf("malformed employee range %q", s)
	}

	minCount, err := strconv.Atoi(parts[0])
	if err != nil {
		return EmployeeRange{}, fmt.Errorf("malformed employee range %q", s)
	}

	r := EmployeeRange{Min: minCount}
	if parts[1] != "" {
		maxCount, err := strconv.Atoi(parts[1])
		if err != nil {
			return EmployeeRange{}, fmt.Errorf("malformed employee range %q", s)
		}
		r.Max = &maxCount
	}
	return r, nil
}

// String renders the range in PostgreSQL int4range literal form.
func (r EmployeeRange) String() string {
	if r.Max == nil {
		return fmt.Sprintf("[%d,)", r.Min)
	}
	return fmt.Sprintf("[%d,%d]", r.Min, *r.Max)
}

// Bounds returns the [min, max] pair carried in token payloads; max is nil
// when the band is unbounded.
func (r EmployeeRange) Bounds() []any {
	if r.Max == nil {
		return []any{r.Min, nil}
	}
	return []any{r.Min, *r.Max}
}

// TokenPair is what login, social login, and refresh return.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
