package model

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email,omitempty"`
	Password       string    `gorm:"not null" json:"-"`
	Role           UserRole  `gorm:"type:varchar(16);not null" json:"role,omitempty"`
	ProfilePicture string    `gorm:"size:1024" json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// PublicUser is the part of a user that is returned on signup and login.
type PublicUser struct {
	ID             uint     `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
	}
}

type Movie struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null;index" json:"title"`
	Genre         []string  `gorm:"type:text;serializer:json" json:"genre,omitempty"`
	ReleaseYear   int       `gorm:"not null;index" json:"releaseYear,omitempty"`
	Director      string    `gorm:"size:255" json:"director,omitempty"`
	Cast          []string  `gorm:"type:text;serializer:json" json:"cast,omitempty"`
	Synopsis      string    `gorm:"type:text" json:"synopsis,omitempty"`
	PosterURL     string    `gorm:"size:1024" json:"posterUrl,omitempty"`
	AverageRating float64   `gorm:"not null;default:0" json:"averageRating"`
	RatingsCount  int       `gorm:"not null;default:0" json:"ratingsCount"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_user_movie" json:"userId"`
	MovieID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_movie;index:idx_reviews_movie" json:"movieId"`
	Rating     int       `gorm:"not null" json:"rating"`
	ReviewText string    `gorm:"type:text" json:"reviewText"`
	Timestamp  time.Time `gorm:"not null" json:"timestamp"`
	CreatedAt  time.Time `json:"createdAt"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Movie *Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
}

type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"userId"`
	MovieID   uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"movieId"`
	DateAdded time.Time `gorm:"not null" json:"dateAdded"`
	CreatedAt time.Time `json:"createdAt"`

	Movie *Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{&User{}, &Movie{}, &Review{}, &WatchlistEntry{}}
}
