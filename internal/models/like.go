package models

// Like records a user's interest in a product. One row per user/product pair;
// insertion order doubles as the fan-out iteration order.
type Like struct {
	BaseModel

	UserID    uint `gorm:"uniqueIndex:idx_likes_user_product;not null" json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_likes_user_product;index;not null" json:"product_id"`
}
