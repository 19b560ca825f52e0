package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"catalog/constants"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/services/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler xử lý body của một request RPC và trả về giá trị sẽ được encode thành reply
type Handler func(ctx context.Context, body []byte) (interface{}, error)

type ProductProvider interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListRawBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	UpdateStock(ctx context.Context, productID, sku string, delta int) error
}

type VariantProvider interface {
	GetBySKU(ctx context.Context, sku string) (*models.Variant, error)
}

// NewHandlers trả về bảng queue -> handler mà catalog phục vụ cho các service khác
func NewHandlers(products ProductProvider, variants VariantProvider) map[string]Handler {
	return map[string]Handler{
		constants.QueueGetProductByID: func(ctx context.Context, body []byte) (interface{}, error) {
			var req struct {
				ProductID string `json:"productId"`
			}
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			return products.GetByID(ctx, req.ProductID)
		},
		constants.QueueUpdateStock: func(ctx context.Context, body []byte) (interface{}, error) {
			var req struct {
				ProductID  string `json:"productId"`
				StockValue int    `json:"stockValue"`
				SKU        string `json:"sku"`
			}
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			if err := products.UpdateStock(ctx, req.ProductID, req.SKU, req.StockValue); err != nil {
				return nil, err
			}
			return map[string]bool{"success": true}, nil
		},
		constants.QueueGetProductsBySellerID: func(ctx context.Context, body []byte) (interface{}, error) {
			var req struct {
				SellerID string `json:"sellerId"`
			}
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			return products.ListRawBySeller(ctx, req.SellerID)
		},
		constants.QueueGetVariantBySku: func(ctx context.Context, body []byte) (interface{}, error) {
			var req struct {
				SKU string `json:"sku"`
			}
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			return variants.GetBySKU(ctx, req.SKU)
		},
		// product_info và variant_info gửi id/sku dạng chuỗi thô
		constants.QueueProductInfo: func(ctx context.Context, body []byte) (interface{}, error) {
			return products.GetByID(ctx, rawID(body))
		},
		constants.QueueVariantInfo: func(ctx context.Context, body []byte) (interface{}, error) {
			return variants.GetBySKU(ctx, rawID(body))
		},
	}
}

// Dispatch chạy handler và luôn trả về một reply hợp lệ; lỗi được encode thành {"error": "..."}
func Dispatch(ctx context.Context, h Handler, body []byte) []byte {
	result, err := h(ctx, body)
	if err == nil {
		var out []byte
		if out, err = json.Marshal(result); err == nil {
			return out
		}
	}
	msg := err.Error()
	if appErr := apperrors.GetAppError(err); appErr != nil {
		msg = appErr.Message
	}
	out, _ := json.Marshal(map[string]string{"error": msg})
	return out
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Validation(apperrors.ErrCodeValidation, "malformed request: "+err.Error())
	}
	return nil
}

func rawID(body []byte) string {
	return strings.Trim(strings.TrimSpace(string(body)), `"`)
}

// RPCServer tiêu thụ các queue RPC, trả lời về reply_to kèm correlation_id rồi mới ack
type RPCServer struct {
	conn     *amqp.Connection
	handlers map[string]Handler
	logger   logger.Logger
	wg       sync.WaitGroup
}

func NewRPCServer(conn *amqp.Connection, handlers map[string]Handler, log logger.Logger) *RPCServer {
	return &RPCServer{conn: conn, handlers: handlers, logger: log}
}

// Start mở một channel cho mỗi queue; các consumer dừng khi ctx bị hủy
func (s *RPCServer) Start(ctx context.Context) error {
	for name, h := range s.handlers {
		ch, err := s.conn.Channel()
		if err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(name, false, false, false, false, nil); err != nil {
			ch.Close()
			return err
		}
		deliveries, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			ch.Close()
			return err
		}
		s.logger.Info("rpc consumer listening on %s", name)

		s.wg.Add(1)
		go s.consume(ctx, ch, name, h, deliveries)
	}
	return nil
}

func (s *RPCServer) consume(ctx context.Context, ch *amqp.Channel, name string, h Handler, deliveries <-chan amqp.Delivery) {
	defer s.wg.Done()
	defer ch.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				s.logger.Error("rpc channel for %s closed", name)
				return
			}
			s.reply(ctx, ch, name, h, d)
		}
	}
}

func (s *RPCServer) reply(ctx context.Context, ch *amqp.Channel, name string, h Handler, d amqp.Delivery) {
	body := Dispatch(ctx, h, d.Body)
	if d.ReplyTo != "" {
		err := ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          body,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("reply to %s on %s: %v", d.ReplyTo, name, err)
		}
	}
	if err := d.Ack(false); err != nil {
		s.logger.Error("ack message on %s: %v", name, err)
	}
}

// Wait chờ mọi consumer thoát sau khi ctx bị hủy
func (s *RPCServer) Wait() {
	s.wg.Wait()
}
