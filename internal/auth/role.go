package auth

import (
	"slices"

	"github.com/qs-lzh/movie-review/internal/model"
)

// HasRole reports whether actor is one of the allowed roles.
func HasRole(actor model.UserRole, allowed ...model.UserRole) bool {
	return actor != "" && slices.Contains(allowed, actor)
}
