package model

import (
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5

	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

// Violations maps a field name to the rule it broke.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignup checks the fields a new account needs.
func ValidateSignup(username, email, password string) Violations {
	v := Violations{}
	required("username", username, v)
	required("email", email, v)
	if password == "" {
		v["password"] = "required"
	}
	passwordLength(password, v)
	return v
}

// ValidatePassword checks a password that is about to be hashed.
func ValidatePassword(password string) Violations {
	v := Violations{}
	if password == "" {
		v["password"] = "required"
	}
	passwordLength(password, v)
	return v
}

func passwordLength(password string, v Violations) {
	if len(password) > MaxPasswordBytes {
		v["password"] = "too_long"
	}
}

// Missing reports whether any field broke the required rule.
func (v Violations) Missing() bool {
	for _, rule := range v {
		if rule == "required" {
			return true
		}
	}
	return false
}

func (m *Movie) Validate() Violations {
	v := Violations{}
	required("title", m.Title, v)
	genres := 0
	for _, g := range m.Genre {
		if strings.TrimSpace(g) != "" {
			genres++
		}
	}
	if genres == 0 {
		v["genre"] = "required"
	}
	if m.ReleaseYear == 0 {
		v["releaseYear"] = "required"
	}
	return v
}

func (r *Review) Validate() Violations {
	v := Violations{}
	if r.Rating < MinRating || r.Rating > MaxRating {
		v["rating"] = "out_of_range"
	}
	return v
}

func (w *WatchlistEntry) Validate() Violations {
	v := Violations{}
	if w.MovieID == 0 {
		v["movieId"] = "required"
	}
	return v
}
