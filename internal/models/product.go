package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a sellable listing. Price is stored in minor currency units.
type Product struct {
	BaseModel

	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`
	Owner       *User  `json:"owner,omitempty"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`

	// Attributes holds free-form listing properties (condition, colour, ...).
	Attributes datatypes.JSON `json:"attributes,omitempty"`

	Likes    []Like    `gorm:"foreignKey:ProductID" json:"-"`
	Comments []Comment `gorm:"foreignKey:ProductID" json:"-"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
