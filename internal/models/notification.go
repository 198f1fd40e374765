package models

// NotificationType enumerates the internal event taxonomy. The set is closed:
// every value added here must also be added to AllNotificationTypes and given
// a wire mapping (the realtime package's translator test enforces both).
type NotificationType string

const (
	NotificationPriceChange NotificationType = "PRICE_CHANGE"
	NotificationNewComment  NotificationType = "NEW_COMMENT"
)

// AllNotificationTypes lists every member of the closed enumeration.
var AllNotificationTypes = []NotificationType{
	NotificationPriceChange,
	NotificationNewComment,
}

// Notification is a durable per-recipient record of a domain event. Fan-out to
// N recipients produces N independent rows. Rows are never deleted; the only
// mutable field is IsRead, which transitions false -> true exactly once.
type Notification struct {
	BaseModel

	RecipientID uint             `gorm:"index;not null" json:"recipient_id"`
	Type        NotificationType `gorm:"type:varchar(64);not null" json:"type"`
	Message     string           `gorm:"type:text;not null" json:"message"`

	// Correlation identifiers; only the ones relevant to Type are set.
	ArticleID *uint `json:"article_id,omitempty"`
	ProductID *uint `json:"product_id,omitempty"`
	CommentID *uint `json:"comment_id,omitempty"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`
}
