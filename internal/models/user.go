package models

import "strings"

// FallbackDisplayName is used when a user has no name on record.
const FallbackDisplayName = "Someone"

// User describes a marketplace account.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Products []Product `gorm:"foreignKey:OwnerID" json:"-"`
	Articles []Article `gorm:"foreignKey:OwnerID" json:"-"`
}

// DisplayName renders the user's human-readable name, falling back to a
// generic label when no name is on record.
func (u *User) DisplayName() string {
	if u == nil {
		return FallbackDisplayName
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return FallbackDisplayName
	}
	return name
}
