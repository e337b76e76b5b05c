package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/classic-spotlight/internal/logging"
)

// LogFileName is the file under the log directory that receives one line
// per consumed decision.
const LogFileName = "spotlight.log"

// StartDecisionConsumer connects to RabbitMQ at url, declares the
// spotlight.decided queue (durable) and appends each decision to
// dir/spotlight.log.  It reconnects with exponential backoff and returns
// only when ctx is cancelled.  Messages that cannot be handled are
// rejected without requeue.
func StartDecisionConsumer(ctx context.Context, url, dir string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("decision-consumer: failed to dial broker")
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, dir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("decision-consumer: consume loop ended; reconnecting")
		if err := sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logging.Warn().Err(err).Msg("decision-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(DecisionQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, DecisionQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleMessage(dir, d.Body); err != nil {
			logging.Error().Err(err).Msg("decision-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one DecisionRecordedEvent and appends it to the
// decision log in dir.
func HandleMessage(dir string, body []byte) error {
	var ev DecisionRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Date == "" {
		return errors.New("event has no date")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-readable log line.
func FormatLine(ev DecisionRecordedEvent) string {
	if !ev.Published {
		return fmt.Sprintf("[%s] Spotlight skipped | date=%s | best_score=%d | candidates_checked=%d | reason=%s\n",
			ev.RecordedAt, ev.Date, ev.Score, ev.CandidatesChecked, ev.Reason)
	}
	return fmt.Sprintf("[%s] Spotlight published | date=%s | movie_id=%s | screening_id=%s | score=%d | candidates_checked=%d | reason=%s\n",
		ev.RecordedAt, ev.Date, idString(ev.MovieID), idString(ev.ScreeningID), ev.Score, ev.CandidatesChecked, ev.Reason)
}

func idString(id *uint64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatUint(*id, 10)
}
