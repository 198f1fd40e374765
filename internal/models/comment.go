package models

// Comment is attached to either an article or a product, never both.
type Comment struct {
	BaseModel

	AuthorID uint   `gorm:"index;not null" json:"author_id"`
	Author   *User  `json:"author,omitempty"`
	Body     string `gorm:"type:text;not null" json:"body"`

	ArticleID *uint `gorm:"index" json:"article_id,omitempty"`
	ProductID *uint `gorm:"index" json:"product_id,omitempty"`
}
