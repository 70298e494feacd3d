package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScopeAdmin grants unrestricted access to all resources.
const ScopeAdmin = "admin"

// User represents an account able to authenticate against the service.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Scopes       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ParseScopes splits a comma-delimited scope string into its individual
// scopes, dropping empty entries and surrounding whitespace.
func ParseScopes(scopes string) []string {
	parts := strings.Split(scopes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasScope reports whether the comma-delimited scope string grants the
// requested scope. The admin scope grants everything.
func HasScope(scopes, want string) bool {
	for _, s := range ParseScopes(scopes) {
		if s == want || s == ScopeAdmin {
			return true
		}
	}
	return false
}
