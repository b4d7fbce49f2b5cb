package events

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	BookingCreated        = "booking.created"
	BookingStatusChanged  = "booking.status_changed"
	BookingCancelled      = "booking.cancelled"
	PaymentCompleted      = "payment.completed"
	FoodOrderCreated      = "food_order.created"
	ServiceRequestCreated = "service_request.created"
	ServiceRequestUpdated = "service_request.updated"
	DefaultExchange       = "events"
	exchangeKind          = "topic"
)

// Publisher emits domain events. A nil Publisher is valid and drops events.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logrus.Logger
}

func NewRabbitPublisher(url, exchange string, log *logrus.Logger) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

func (p *RabbitPublisher) Publish(routingKey string, payload any) error {
	body, err := Encode(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	if err := p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.WithFields(logrus.Fields{"exchange": p.exchange, "key": routingKey}).Debug("event published")
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func Encode(routingKey string, payload any, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{Event: routingKey, OccurredAt: at.UTC(), Data: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", routingKey, err)
	}
	return body, nil
}

// Emit publishes through p when it is set; failures are logged and never
// surface to the caller since events are advisory.
func Emit(p Publisher, log logrus.FieldLogger, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil && log != nil {
		log.WithError(err).WithField("key", routingKey).Warn("event publish failed")
	}
}
