// Package domain contains core domain types for the GrowWise client.
package domain

import "strings"

// Profession is the free-form profession label shown next to a user.
type Profession string

// ProfessionOther is used when the profession is unknown, e.g. for users
// restored from stored credentials.
const ProfessionOther Profession = "Other"

// User represents the signed-in user.
type User struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Profession   Profession `json:"profession"`
	IsRegistered bool       `json:"isRegistered"`
}

// UserFromEmail derives a registered user from an email address alone.
// The name is the local part of the address.
func UserFromEmail(email string) *User {
	name := email
	if i := strings.Index(email, "@"); i >= 0 {
		name = email[:i]
	}
	return &User{
		Name:         name,
		Email:        email,
		Profession:   ProfessionOther,
		IsRegistered: true,
	}
}
