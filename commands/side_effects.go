package commands

import (
	"context"
	"time"

	"catalog/models"
	"catalog/repositories"
	"catalog/services/logger"
	"catalog/services/notification"
)

// Command là một tác vụ phụ chạy sau khi ghi chính đã xong
type Command interface {
	Name() string
	Execute(ctx context.Context) error
}

// WriteProductLogCommand ghi một dòng nhật ký sản phẩm
type WriteProductLogCommand struct {
	store repositories.ProductLogStore
	entry models.ProductLog
}

func NewWriteProductLogCommand(store repositories.ProductLogStore, productID, title, content string) *WriteProductLogCommand {
	return &WriteProductLogCommand{
		store: store,
		entry: models.ProductLog{ProductID: productID, Title: title, Content: content},
	}
}

func (c *WriteProductLogCommand) Name() string { return "product_log" }

func (c *WriteProductLogCommand) Execute(ctx context.Context) error {
	entry := c.entry
	return c.store.Create(ctx, &entry)
}

// NotifyCommand gửi thông báo nếu người nhận cho phép
type NotifyCommand struct {
	svc          notification.Service
	to           notification.Recipient
	preference   string
	notification notification.Notification
}

func NewNotifyCommand(svc notification.Service, to notification.Recipient, preference string, n notification.Notification) *NotifyCommand {
	return &NotifyCommand{svc: svc, to: to, preference: preference, notification: n}
}

func (c *NotifyCommand) Name() string { return "notify:" + c.preference }

func (c *NotifyCommand) Execute(ctx context.Context) error {
	return c.svc.Notify(ctx, c.to, c.preference, c.notification)
}

// PublishEventCommand đẩy một sự kiện lên broker
type PublishEventCommand struct {
	publisher notification.Publisher
	name      string
	key       string
	payload   interface{}
}

func NewPublishEventCommand(publisher notification.Publisher, name, key string, payload interface{}) *PublishEventCommand {
	return &PublishEventCommand{publisher: publisher, name: name, key: key, payload: payload}
}

func (c *PublishEventCommand) Name() string { return "event:" + c.name }

func (c *PublishEventCommand) Execute(ctx context.Context) error {
	return c.publisher.Publish(ctx, c.key, c.payload)
}

// Runner chạy các command theo kiểu best-effort: lỗi chỉ được log lại
type Runner struct {
	logger  logger.Logger
	timeout time.Duration
}

func NewRunner(log logger.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Runner{logger: log, timeout: timeout}
}

// Run tách khỏi cancel của request để client ngắt kết nối không làm mất side effect
func (r *Runner) Run(ctx context.Context, cmds ...Command) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if err := c.Execute(ctx); err != nil {
			r.logger.Error("side effect %s failed: %v", c.Name(), err)
		}
	}
}
