package rabbit

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const auditQueue = "showtix.audit"

// Consumer binds a durable queue to the events exchange and delivers
// booking events to the notifier worker. Show events are audited
// synchronously by the catalog service and are not bound here.
type Consumer struct {
	ch *amqp.Channel
}

func NewConsumer(conn *amqp.Connection) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(auditQueue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	if err := ch.QueueBind(auditQueue, "booking.*", Exchange, false, nil); err != nil {
		return nil, err
	}
	return &Consumer{ch: ch}, nil
}

// Deliveries starts consuming. Messages must be acked or rejected by the
// caller.
func (c *Consumer) Deliveries() (<-chan amqp.Delivery, error) {
	return c.ch.Consume(auditQueue, "", false, false, false, false, nil)
}
