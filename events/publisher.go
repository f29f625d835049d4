// Package events publishes finished feedback reports.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-feedback/metrics"
)

// Publisher writes feedback events to a Kafka topic, or only logs them when
// Kafka is disabled.
type Publisher struct {
	writer  *kafka.Writer
	topic   string
	enabled bool
	log     *logrus.Entry
	metrics *metrics.Metrics
}

type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// New creates a publisher. m may be nil.
func New(cfg Config, log *logrus.Entry, m *metrics.Metrics) *Publisher {
	p := &Publisher{topic: cfg.Topic, log: log, metrics: m}
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info("kafka disabled, feedback events are logged only")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}
	p.enabled = true

	log.WithFields(logrus.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Info("kafka publisher initialized")
	return p
}

// Publish marshals event and writes it keyed by key.
func (p *Publisher) Publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.record("marshal", err)
		return err
	}

	entry := p.log.WithFields(logrus.Fields{"topic": p.topic, "key": key})
	if !p.enabled {
		entry.WithField("payload", string(payload)).Debug("feedback event")
		p.record("log", nil)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("feedback.completed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		entry.WithError(err).Error("failed to write feedback event")
		p.record("kafka", err)
		return err
	}
	p.record("kafka", nil)
	return nil
}

func (p *Publisher) record(mode string, err error) {
	if p.metrics != nil {
		p.metrics.RecordPublish(mode, err)
	}
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
