package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log"
	"time"

	"github.com/SundayYogurt/scholarship_service/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type Consumer struct {
	reader      *kafka.Reader
	handler     interfaces.ConsumerHandler
	serviceName string
}

func NewConsumer(broker, topic, groupID, username, password string, handler interfaces.ConsumerHandler) *Consumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{
			Username: username,
			Password: password,
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return &Consumer{
		reader:      reader,
		handler:     handler,
		serviceName: "Notifier",
	}
}

// Listen reads until ctx is cancelled. Handler errors are logged and the
// message is still committed.
func (c *Consumer) Listen(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			log.Printf("[%s] read error: %v", c.serviceName, err)
			time.Sleep(time.Second)
			continue
		}

		log.Printf("[%s] received key=%s offset=%d", c.serviceName, string(msg.Key), msg.Offset)
		c.dispatch(msg)
	}
}

func (c *Consumer) dispatch(msg kafka.Message) {
	if err := c.handler.HandleMessage(msg.Key, msg.Value); err != nil {
		log.Printf("[%s] handler error: %v", c.serviceName, err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
