package models

import (
	"time"
)

type User struct {
	ID            string `gorm:"primaryKey"`
	WorkOSID      string `gorm:"column:workos_id;uniqueIndex;not null"` // subject id issued by WorkOS
	Email         string `gorm:"index"`
	FirstName     string
	LastName      string
	FavoriteColor string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
