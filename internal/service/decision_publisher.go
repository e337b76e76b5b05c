// Package service holds outbound integrations used by the spotlight engine.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/iliyamo/classic-spotlight/internal/logging"
	"github.com/iliyamo/classic-spotlight/internal/metrics"
	"github.com/iliyamo/classic-spotlight/internal/model"
	q "github.com/iliyamo/classic-spotlight/internal/queue"
)

// PublishFunc delivers one encoded event.
type PublishFunc func(ctx context.Context, body []byte) error

// DecisionPublisher sends DecisionRecordedEvent messages to the
// spotlight.decided queue behind a circuit breaker, so a broker outage
// costs one fast failure per request instead of a dial timeout.
type DecisionPublisher struct {
	publish PublishFunc
	breaker *gobreaker.CircuitBreaker[any]
	now     func() time.Time
}

// BreakerConfig tunes the publisher's circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32        // consecutive failures before opening
	Timeout          time.Duration // open duration before a trial request
}

// DefaultBreakerConfig opens after 3 consecutive failures for 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 3, Timeout: 30 * time.Second}
}

// NewDecisionPublisher publishes to the broker at url.
func NewDecisionPublisher(url string, cfg BreakerConfig) *DecisionPublisher {
	return NewDecisionPublisherWith(AMQPPublish(url), cfg)
}

// NewDecisionPublisherWith uses publish as the transport.
func NewDecisionPublisherWith(publish PublishFunc, cfg BreakerConfig) *DecisionPublisher {
	if publish == nil {
		panic("service.NewDecisionPublisherWith: nil publish")
	}
	settings := gobreaker.Settings{
		Name:        "decision-publisher",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &DecisionPublisher{
		publish: publish,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		now:     time.Now,
	}
}

// State reports the circuit breaker state.
func (p *DecisionPublisher) State() gobreaker.State { return p.breaker.State() }

// NotifyDecision publishes d.  Failures are counted and returned; callers
// log them and carry on.
func (p *DecisionPublisher) NotifyDecision(ctx context.Context, d model.Decision) error {
	body, err := json.Marshal(q.NewDecisionRecordedEvent(d, p.now()))
	if err != nil {
		metrics.PublishErrorsTotal.Inc()
		return err
	}
	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.publish(ctx, body)
	})
	if err != nil {
		metrics.PublishErrorsTotal.Inc()
		return err
	}
	return nil
}

// DialTimeout bounds the TCP and AMQP handshake of one publish.
const DialTimeout = 2 * time.Second

// AMQPPublish returns a PublishFunc that opens a connection per message,
// declares the durable queue and publishes a persistent message.  Decisions
// are daily, so a pooled connection would sit idle.
func AMQPPublish(url string) PublishFunc {
	return func(ctx context.Context, body []byte) error {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(DialTimeout),
		})
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		ch, err := conn.Channel()
		if err != nil {
			return err
		}
		defer func() { _ = ch.Close() }()

		if _, err := ch.QueueDeclare(
			q.DecisionQueueName, // name
			true,                // durable
			false,               // autoDelete
			false,               // exclusive
			false,               // noWait
			nil,                 // args
		); err != nil {
			return err
		}

		return ch.PublishWithContext(ctx,
			"",                  // default exchange
			q.DecisionQueueName, // routing key = queue name
			false,               // mandatory
			false,               // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				Body:         body,
			},
		)
	}
}
