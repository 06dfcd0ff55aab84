// Package kafka publishes journal entry change events to the outbound topic.
package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/config"
)

// ErrIngenBrokere is returned when the producer is built without brokers.
var ErrIngenBrokere = errors.New("kafka: no brokers configured")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer writes keyed messages to one topic. Messages with the same key
// land on the same partition, so events for one entry stay ordered.
type Producer struct {
	w     messageWriter
	topic string
}

// NewProducer builds a producer for cfg.Topic. TLS is enabled when a client
// certificate is configured.
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrIngenBrokere
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.CertFile != "" {
		tlsCfg, err := tlsConfig(cfg)
		if err != nil {
			return nil, err
		}
		w.Transport = &kafkago.Transport{TLS: tlsCfg, ClientID: cfg.ClientID}
	} else if cfg.ClientID != "" {
		w.Transport = &kafkago.Transport{ClientID: cfg.ClientID}
	}

	return &Producer{w: w, topic: cfg.Topic}, nil
}

// Send writes one message and blocks until the brokers acknowledged it.
// The trace context of ctx travels in the message headers.
func (p *Producer) Send(ctx context.Context, key string, value []byte) error {
	tr := otel.Tracer("kafka/Producer")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.String("messaging.kafka.message.key", key),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafkago.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}

	if err := p.w.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("kafka: write to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending writes and releases connections.
func (p *Producer) Close() error {
	return p.w.Close()
}

func tlsConfig(cfg config.KafkaConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("kafka: load client certificate: %w", err)
	}
	tc := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("kafka: read CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("kafka: CA file contains no certificates")
		}
		tc.RootCAs = pool
	}
	return tc, nil
}
