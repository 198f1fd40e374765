package models

import "time"

// BaseModel provides shared fields for all persistent models.
// Identifiers are auto-incremented integers; callers treat them as opaque.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
