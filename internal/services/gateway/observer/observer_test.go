package observer

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLogEvent_RecordsTypeAndTopic(t *testing.T) {
	buf := captureLog(t)
	o := New("localhost:9092")

	o.logEvent("users-topic", []byte(`{"type":"UserCreated","user":{"id":1,"username":"ana","email":"ana@example.com"}}`))

	out := buf.String()
	if !strings.Contains(out, "UserCreated") || !strings.Contains(out, "users-topic") {
		t.Fatalf("log output missing event details: %q", out)
	}
}

func TestLogEvent_MalformedPayloadSkipped(t *testing.T) {
	buf := captureLog(t)
	o := New("localhost:9092")

	o.logEvent("products-topic", []byte(`not json`))

	if !strings.Contains(buf.String(), "malformed") {
		t.Fatalf("log output = %q, want malformed notice", buf.String())
	}
}

func TestLogEvent_MissingTypeSkipped(t *testing.T) {
	buf := captureLog(t)
	o := New("localhost:9092")

	o.logEvent("products-topic", []byte(`{"product":{"id":1}}`))

	if !strings.Contains(buf.String(), "malformed") {
		t.Fatalf("log output = %q, want malformed notice", buf.String())
	}
}
