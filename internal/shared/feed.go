package shared

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/assessment"
	"github.com/example/bridgetwin/internal/metrics"
	"github.com/example/bridgetwin/internal/telemetry"
)

// Feed topics.
const (
	TopicTelemetry  = "telemetry"
	TopicAssessment = "assessment"
)

// AssessmentEvent is the body published on TopicAssessment.
type AssessmentEvent struct {
	Record  telemetry.TelemetryRecord `json:"record"`
	Verdict assessment.Verdict        `json:"verdict"`
}

// Feed publishes served records and verdicts for external consumers.
// Failures are logged and counted, never returned. A nil *Feed is a no-op.
type Feed struct {
	queue   MessageQueue
	service string
	logger  *zap.Logger
}

func NewFeed(queue MessageQueue, service string, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{queue: queue, service: service, logger: logger}
}

func (f *Feed) PublishRecord(ctx context.Context, record telemetry.TelemetryRecord) {
	if f == nil {
		return
	}
	body, err := telemetry.Marshal(record)
	f.publish(ctx, TopicTelemetry, body, err)
}

func (f *Feed) PublishVerdict(ctx context.Context, record telemetry.TelemetryRecord, verdict assessment.Verdict) {
	if f == nil {
		return
	}
	body, err := json.Marshal(AssessmentEvent{Record: record, Verdict: verdict})
	f.publish(ctx, TopicAssessment, body, err)
}

func (f *Feed) publish(ctx context.Context, topic string, body []byte, err error) {
	if err == nil {
		err = f.queue.Publish(ctx, topic, body)
	}
	metrics.RecordMessageProduced(f.service, topic, err)
	if err != nil {
		f.logger.Warn("feed publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// Close closes the underlying queue.
func (f *Feed) Close() error {
	if f == nil {
		return nil
	}
	return f.queue.Close()
}
