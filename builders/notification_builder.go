package builders

import (
	"time"

	"catalog/constants"
	"catalog/services/notification"
)

// NotificationBuilder giúp tạo notification theo từng bước
type NotificationBuilder struct {
	n notification.Notification
}

// NewNotificationBuilder tạo notification cá nhân, có thể xóa và đánh dấu đã đọc
func NewNotificationBuilder(notificationType string) *NotificationBuilder {
	return &NotificationBuilder{
		n: notification.Notification{
			NotificationType: notificationType,
			TargetType:       constants.TargetIndividual,
			CanDelete:        true,
			CanMarkAsRead:    true,
		},
	}
}

func (b *NotificationBuilder) WithTitle(title string) *NotificationBuilder {
	b.n.Title = title
	return b
}

func (b *NotificationBuilder) WithContent(content string) *NotificationBuilder {
	b.n.Content = content
	return b
}

func (b *NotificationBuilder) WithTargets(ids ...string) *NotificationBuilder {
	b.n.TargetIDs = append(b.n.TargetIDs, ids...)
	return b
}

func (b *NotificationBuilder) WithPath(path string) *NotificationBuilder {
	b.n.Related.Path = path
	return b
}

// Build đóng dấu thời gian tạo
func (b *NotificationBuilder) Build() notification.Notification {
	n := b.n
	n.TargetIDs = append([]string(nil), b.n.TargetIDs...)
	n.CreatedAt = time.Now()
	return n
}
