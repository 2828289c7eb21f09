// The notifier drains booking events from RabbitMQ and records them in the
// Mongo audit collection, keeping the booking write path free of any
// blocking audit work.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/showtix/showtix/internal/adapters/mongo"
	"github.com/showtix/showtix/internal/adapters/rabbit"
	"github.com/showtix/showtix/internal/config"
	"github.com/showtix/showtix/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	auditor := mongoadapter.NewAuditLogger(mongoClient.Database("showtix"), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	worker := NewNotifier(consumer, auditor, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.WithError(err).Error("notifier stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down notifier")
}

type Notifier struct {
	consumer *rabbit.Consumer
	auditor  *mongoadapter.AuditLogger
	logger   observability.Logger
}

func NewNotifier(consumer *rabbit.Consumer, auditor *mongoadapter.AuditLogger, logger observability.Logger) *Notifier {
	return &Notifier{consumer: consumer, auditor: auditor, logger: logger}
}

// Run consumes deliveries until the context is cancelled. A failed audit
// write rejects the message back onto the queue for redelivery.
func (n *Notifier) Run(ctx context.Context) error {
	deliveries, err := n.consumer.Deliveries()
	if err != nil {
		return err
	}
	n.logger.Info("notifier consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			n.handle(ctx, d)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, d amqp.Delivery) {
	var ev rabbit.BookingEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		n.logger.WithError(err).Warn("dropped malformed event")
		_ = d.Reject(false)
		return
	}

	err := n.auditor.LogEvent(ctx, ev.Type, ev.UserID, map[string]interface{}{
		"booking_id":        ev.BookingID,
		"show_id":           ev.ShowID,
		"quantity":          ev.Quantity,
		"total_price_cents": ev.TotalPriceCents,
		"at":                ev.At,
	})
	if err != nil {
		_ = d.Reject(true)
		return
	}
	_ = d.Ack(false)
}
