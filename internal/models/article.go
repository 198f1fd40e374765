package models

import "gorm.io/gorm"

// Article is an editorial post written by a user.
type Article struct {
	BaseModel

	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
	Owner   *User  `json:"owner,omitempty"`
	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Body    string `gorm:"type:text" json:"body"`

	Comments []Comment `gorm:"foreignKey:ArticleID" json:"-"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
