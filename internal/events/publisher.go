// Package events emits the domain events other systems consume: a check-in
// was recorded, a session changed lifecycle state. Publishing is best-effort;
// a broker outage never fails the operation that produced the event.
package events

import (
	"context"
	"time"

	"checkinapp/pkg/config"
	"checkinapp/pkg/kafka"
	kafka_config "checkinapp/pkg/kafka/config"
	"checkinapp/pkg/logger"
	"checkinapp/pkg/model"
)

const (
	EventCheckInRecorded     = "checkin.recorded"
	EventSessionTransitioned = "session.transitioned"

	sourceService = "checkin-service"
)

type CheckInRecorded struct {
	CheckInID     string    `json:"check_in_id"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	Method        string    `json:"method"`
	IsLate        bool      `json:"is_late"`
	CheckInTime   time.Time `json:"check_in_time"`
}

type SessionTransitioned struct {
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	At        time.Time `json:"at"`
}

// Publisher is nil-safe: a nil *Publisher (Kafka disabled) silently drops
// events, so call sites never branch on whether eventing is configured.
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher builds the Kafka-backed publisher, or nil when eventing is
// disabled by configuration.
func NewPublisher(cfg *config.Config) (*Publisher, error) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Event publishing disabled")
		return nil, nil
	}

	kcfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kcfg, cfg.CheckInEventTopic, kcfg.DLQTopic)
	if err != nil {
		return nil, err
	}

	cfg.Log.Info("Event publisher initialized",
		"topic", cfg.CheckInEventTopic,
		"brokers", kcfg.Brokers,
	)
	return &Publisher{
		producer: producer,
		log:      cfg.Log,
	}, nil
}

func (p *Publisher) CheckInRecorded(ctx context.Context, record *model.CheckIn) {
	if p == nil {
		return
	}

	event := CheckInRecorded{
		CheckInID:     record.ID,
		SessionID:     record.SessionID,
		ParticipantID: record.ParticipantID,
		Method:        string(record.Method),
		IsLate:        record.IsLate,
		CheckInTime:   record.CheckInTime,
	}

	msg := kafka.NewMessage().
		WithKey(record.SessionID).
		WithValue(event).
		WithEventType(EventCheckInRecorded).
		WithSource(sourceService).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish check-in event",
			"check_in_id", record.ID,
			"session_id", record.SessionID,
			"error", err,
		)
	}
}

func (p *Publisher) SessionTransitioned(ctx context.Context, sessionID string, from, to model.SessionStatus, at time.Time) {
	if p == nil {
		return
	}

	event := SessionTransitioned{
		SessionID: sessionID,
		From:      string(from),
		To:        string(to),
		At:        at,
	}

	msg := kafka.NewMessage().
		WithKey(sessionID).
		WithValue(event).
		WithEventType(EventSessionTransitioned).
		WithSource(sourceService).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish session transition event",
			"session_id", sessionID,
			"from", from,
			"to", to,
			"error", err,
		)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
