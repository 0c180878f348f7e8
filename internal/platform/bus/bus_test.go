package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublish_RejectsUnconfiguredPublisher(t *testing.T) {
	var p *Publisher
	if err := p.Publish(context.Background(), []byte("{}")); err == nil {
		t.Fatal("expected error from nil publisher")
	}
	if err := (&Publisher{}).Publish(context.Background(), []byte("{}")); err == nil {
		t.Fatal("expected error from publisher without writer")
	}
}

func TestConsumerRun_RejectsMissingHandler(t *testing.T) {
	consumer := NewConsumer("localhost:9092", "test-group", []string{"test-topic"})
	if err := consumer.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestConsumerRun_StopsCleanlyOnCancel(t *testing.T) {
	consumer := NewConsumer("localhost:9092", "test-group", []string{"test-topic"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(ctx, func(string, []byte) {})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}
