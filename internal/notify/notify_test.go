package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type flakyNotifier struct {
	failFor map[string]bool
	sent    []Message
}

func (f *flakyNotifier) Notify(_ context.Context, msg Message) error {
	if f.failFor[msg.Phone] {
		return errors.New("gateway rejected recipient")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestBatchCountsPartialSuccess(t *testing.T) {
	n := &flakyNotifier{failFor: map[string]bool{"2": true}}
	msgs := []Message{
		{Kind: KindReminder, Phone: "1"},
		{Kind: KindReminder, Phone: "2"},
		{Kind: KindReminder, Phone: "3"},
	}

	if got := Batch(context.Background(), n, msgs); got != 2 {
		t.Errorf("Batch = %d, want 2", got)
	}
	if len(n.sent) != 2 || n.sent[1].Phone != "3" {
		t.Errorf("batch did not continue past the failure: %+v", n.sent)
	}
}

func TestBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := &flakyNotifier{}
	if got := Batch(ctx, n, []Message{{Phone: "1"}}); got != 0 {
		t.Errorf("Batch = %d, want 0", got)
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogNotifier(nil)
	if err := n.Notify(context.Background(), Message{Kind: KindReceipt, Phone: "1"}); err != nil {
		t.Errorf("Notify failed: %v", err)
	}
}

type recordingPublisher struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

func TestAMQPNotifierPublishesJSON(t *testing.T) {
	pub := &recordingPublisher{}
	n := newAMQPNotifier(pub, "wasteline.notify")

	msg := Message{Kind: KindReminder, Phone: "9876541001", HouseholdID: 1001, Period: "October 2026", Amount: 100}
	if err := n.Notify(context.Background(), msg); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if pub.exchange != "wasteline.notify" || pub.key != "notify.reminder" {
		t.Errorf("published to %s/%s", pub.exchange, pub.key)
	}
	if pub.msg.DeliveryMode != amqp091.Persistent || pub.msg.MessageId == "" {
		t.Errorf("unexpected publishing: %+v", pub.msg)
	}

	var decoded Message
	if err := json.Unmarshal(pub.msg.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded != msg {
		t.Errorf("decoded = %+v, want %+v", decoded, msg)
	}
}

func TestAMQPNotifierWrapsPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	n := newAMQPNotifier(pub, "x")

	if err := n.Notify(context.Background(), Message{Kind: KindReceipt, Phone: "1"}); err == nil {
		t.Error("expected publish error")
	}
}
