// Package profile fetches and caches the authenticated user's profile
// and avatar URL.
package profile

import "strings"

// Profile is the authenticated user's profile. It is replaced
// wholesale on each successful fetch and cleared on logout.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Bio       string
}

// FullName joins first and last name, tolerating a missing last name.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// LoginName is the "@username" handle.
func (p Profile) LoginName() string {
	return "@" + p.Username
}

type profileResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

func (r profileResponse) toDomain() Profile {
	return Profile{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
}
