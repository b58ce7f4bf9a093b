package shared

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/example/bridgetwin/internal/assessment"
	"github.com/example/bridgetwin/internal/metrics"
	"github.com/example/bridgetwin/internal/telemetry"
	"github.com/example/bridgetwin/internal/testutils"
	"github.com/example/bridgetwin/internal/testutils/mocks"
)

func TestFeedPublishRecord(t *testing.T) {
	queue := mocks.NewMockMessageQueue()
	feed := NewFeed(queue, "feed-test-record", testutils.TestLogger(true))

	record := testutils.SampleCriticalRecord()
	feed.PublishRecord(context.Background(), record)

	msgs := queue.GetMessages(TopicTelemetry)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	var got telemetry.TelemetryRecord
	if err := json.Unmarshal(msgs[0].Body, &got); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if got != record {
		t.Errorf("Expected %+v, got %+v", record, got)
	}
	if v := testutil.ToFloat64(metrics.MessagesProduced.WithLabelValues("feed-test-record", TopicTelemetry, "success")); v != 1 {
		t.Errorf("Expected 1 successful publish, got %v", v)
	}
}

func TestFeedPublishVerdict(t *testing.T) {
	queue := mocks.NewMockMessageQueue()
	feed := NewFeed(queue, "feed-test-verdict", nil)

	verdict := assessment.Verdict{ID: "abc", Status: assessment.StatusSafe, Source: assessment.SourceRules}
	feed.PublishVerdict(context.Background(), testutils.SampleNormalRecord(), verdict)

	msgs := queue.GetMessages(TopicAssessment)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	var event AssessmentEvent
	if err := json.Unmarshal(msgs[0].Body, &event); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if event.Verdict.ID != "abc" || event.Record.Location != "Domlur Flyover" {
		t.Errorf("Unexpected event %+v", event)
	}
}

func TestFeedPublishFailureIsSwallowed(t *testing.T) {
	queue := mocks.NewMockMessageQueue()
	queue.SetError(errors.New("broker down"))
	feed := NewFeed(queue, "feed-test-failure", nil)

	feed.PublishRecord(context.Background(), testutils.SampleNormalRecord())

	if len(queue.GetMessages("")) != 0 {
		t.Error("Expected no messages to be stored")
	}
	if v := testutil.ToFloat64(metrics.MessagesProduced.WithLabelValues("feed-test-failure", TopicTelemetry, "error")); v != 1 {
		t.Errorf("Expected 1 failed publish, got %v", v)
	}
}

func TestNilFeed(t *testing.T) {
	var feed *Feed
	feed.PublishRecord(context.Background(), testutils.SampleNormalRecord())
	feed.PublishVerdict(context.Background(), testutils.SampleNormalRecord(), assessment.Verdict{})
	if err := feed.Close(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestFeedClose(t *testing.T) {
	queue := mocks.NewMockMessageQueue()
	if err := NewFeed(queue, "feed-test-close", nil).Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !queue.IsClosed() {
		t.Error("Expected queue to be closed")
	}
}

func TestNewRedisStreamQueueValidation(t *testing.T) {
	if _, err := NewRedisStreamQueue("  ", "", "bridge.telemetry", nil); err == nil {
		t.Error("Expected error for empty address")
	}
	if _, err := NewRedisStreamQueue("localhost:6379", "", "", nil); err == nil {
		t.Error("Expected error for empty stream")
	}
}

func TestFeedPublishHonoursContext(t *testing.T) {
	queue := mocks.NewMockMessageQueue()
	queue.SetPublishDelay(time.Second)
	feed := NewFeed(queue, "feed-test-ctx", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	feed.PublishRecord(ctx, testutils.SampleNormalRecord())

	if v := testutil.ToFloat64(metrics.MessagesProduced.WithLabelValues("feed-test-ctx", TopicTelemetry, "error")); v != 1 {
		t.Errorf("Expected cancelled publish to count as an error, got %v", v)
	}

	queue.Reset()
	var topics []string
	queue.SetPublishFunc(func(topic string, body []byte) error {
		topics = append(topics, topic)
		return nil
	})
	feed.PublishRecord(context.Background(), testutils.SampleNormalRecord())
	feed.PublishVerdict(context.Background(), testutils.SampleNormalRecord(), assessment.Verdict{})
	if len(topics) != 2 || topics[0] != TopicTelemetry || topics[1] != TopicAssessment {
		t.Errorf("Unexpected topics %v", topics)
	}
}
