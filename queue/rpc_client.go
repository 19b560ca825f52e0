package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog/constants"
	apperrors "catalog/errors"
	"catalog/services/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const directReplyTo = "amq.rabbitmq.reply-to"

// RPCClient gọi RPC request/reply qua direct reply-to của RabbitMQ
type RPCClient struct {
	conn    *amqp.Connection
	timeout time.Duration
	logger  logger.Logger
}

func NewRPCClient(conn *amqp.Connection, timeout time.Duration, log logger.Logger) *RPCClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RPCClient{conn: conn, timeout: timeout, logger: log}
}

// Call gửi req vào queue và decode reply vào out; reply {"error": "..."} trở thành lỗi
func (c *RPCClient) Call(ctx context.Context, queue string, req, out interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	// mỗi call một channel: direct reply-to yêu cầu consume và publish trên cùng channel
	ch, err := c.conn.Channel()
	if err != nil {
		return brokerErr(fmt.Errorf("open channel: %w", err))
	}
	defer ch.Close()

	replies, err := ch.Consume(directReplyTo, "", true, false, false, false, nil)
	if err != nil {
		return brokerErr(fmt.Errorf("consume reply queue: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	corrID := uuid.NewString()
	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: corrID,
		ReplyTo:       directReplyTo,
		Body:          body,
	})
	if err != nil {
		return brokerErr(fmt.Errorf("publish to %s: %w", queue, err))
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Error("rpc %s timed out after %s", queue, c.timeout)
			return apperrors.OperationFailed(apperrors.ErrCodeUpstreamFailure, fmt.Sprintf("RPC %s timed out", queue))
		case d, ok := <-replies:
			if !ok {
				return apperrors.OperationFailed(apperrors.ErrCodeUpstreamFailure, "RPC reply channel closed")
			}
			if d.CorrelationId != corrID {
				continue
			}
			return decodeReply(d.Body, out)
		}
	}
}

func brokerErr(err error) error {
	return apperrors.NewAppError(apperrors.KindBackend, apperrors.ErrCodeUpstreamFailure, "Message broker unavailable", err)
}

func decodeReply(body []byte, out interface{}) error {
	var failure struct {
		Error string `json:"error"`
	}
	// reply dạng mảng sẽ không decode được vào struct, bỏ qua lỗi đó
	if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
		return apperrors.OperationFailed(apperrors.ErrCodeUpstreamFailure, failure.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.OperationFailed(apperrors.ErrCodeUpstreamFailure, "malformed RPC reply: "+err.Error())
	}
	return nil
}

// AllowedPreferences hỏi user service các loại thông báo người dùng cho phép
func (c *RPCClient) AllowedPreferences(ctx context.Context, userID, role string) (map[string]bool, error) {
	prefs := map[string]bool{}
	err := c.Call(ctx, constants.QueueGetAllowNotificationPrefs, map[string]string{"userId": userID, "role": role}, &prefs)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// Username trả về tên hiển thị của khách hàng
func (c *RPCClient) Username(ctx context.Context, userID string) (string, error) {
	var user struct {
		Username string `json:"username"`
	}
	err := c.Call(ctx, constants.QueueGetUserByID, map[string]string{"userId": userID, "role": constants.RoleCustomer}, &user)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
