package domain

import "time"

type NotificationType string

const (
	NotificationRequest          NotificationType = "request"
	NotificationApproval         NotificationType = "approval"
	NotificationRejection        NotificationType = "rejection"
	NotificationDelivery         NotificationType = "delivery"
	NotificationDeliveryComplete NotificationType = "delivery_complete"
	NotificationReturn           NotificationType = "return"
	NotificationReturnComplete   NotificationType = "return_complete"
	NotificationPenalty          NotificationType = "penalty"
	NotificationDamage           NotificationType = "damage"
	NotificationReview           NotificationType = "review"
	NotificationComplaint        NotificationType = "complaint"
	NotificationBan              NotificationType = "ban"
	NotificationReminder         NotificationType = "reminder"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	RelatedID *string          `json:"related_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
