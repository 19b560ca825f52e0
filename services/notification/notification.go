package notification

import (
	"context"
	"time"
)

// Notification là payload gửi sang notification service
type Notification struct {
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	NotificationType string    `json:"notification_type"`
	TargetType       string    `json:"target_type"`
	TargetIDs        []string  `json:"target_ids"`
	Related          Related   `json:"related"`
	CanDelete        bool      `json:"can_delete"`
	CanMarkAsRead    bool      `json:"can_mark_as_read"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

type Related struct {
	Path string `json:"path"`
}

// Recipient là người có cài đặt thông báo cần kiểm tra
type Recipient struct {
	UserID string
	Role   string
}

// PreferenceLookup hỏi user service các loại thông báo được phép
type PreferenceLookup interface {
	AllowedPreferences(ctx context.Context, userID, role string) (map[string]bool, error)
}

// Publisher gửi một sự kiện không chờ phản hồi
type Publisher interface {
	Publish(ctx context.Context, key string, v interface{}) error
}

type Service interface {
	Notify(ctx context.Context, to Recipient, preference string, n Notification) error
}

// BrokerService: tra cứu preference qua RPC rồi publish nếu được phép
type BrokerService struct {
	lookup    PreferenceLookup
	publisher Publisher
}

func NewBrokerService(lookup PreferenceLookup, publisher Publisher) *BrokerService {
	return &BrokerService{lookup: lookup, publisher: publisher}
}

func (s *BrokerService) Notify(ctx context.Context, to Recipient, preference string, n Notification) error {
	prefs, err := s.lookup.AllowedPreferences(ctx, to.UserID, to.Role)
	if err != nil {
		return err
	}
	if !prefs[preference] {
		return nil
	}
	return s.publisher.Publish(ctx, to.UserID, n)
}

// NopService dùng khi broker không được cấu hình
type NopService struct{}

func (NopService) Notify(context.Context, Recipient, string, Notification) error { return nil }
