package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/bookable/libs/kafkax"
	"github.com/segmentio/kafka-go"
)

// KafkaSender publishes reminder.due events for a downstream delivery
// service, keyed by appointment so per-appointment ordering holds. Headers
// carry the canonical event metadata plus W3C trace context.
type KafkaSender struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaSender(brokers string, topic string) *KafkaSender {
	if topic == "" {
		topic = "booking.reminder.due.v1"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkax.SplitBrokers(brokers)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaSender{writer: writer, topic: topic}
}

func (s *KafkaSender) ProviderID() string {
	return "kafka"
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

func (s *KafkaSender) Send(ctx context.Context, r Reminder) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": r.AppointmentID,
		"kind":           r.Kind,
		"start_time":     r.StartTime.UTC().Format(time.RFC3339),
		"client_name":    r.ClientName,
		"client_phone":   r.ClientPhone,
		"employee_name":  r.EmployeeName,
		"service_name":   r.ServiceName,
		"tenant_name":    r.TenantName,
		"channel":        r.Channel,
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(r.AppointmentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(s.topic)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	return s.writer.WriteMessages(ctx, msg)
}
