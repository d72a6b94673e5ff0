package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type recordingHandler struct {
	err     error
	calls   int
	streams []string
}

func (h *recordingHandler) Handle(_ context.Context, stream string, _ []byte) error {
	h.calls++
	h.streams = append(h.streams, stream)
	return h.err
}

func TestDecodeDelivery(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		wantErr bool
		payload string
	}{
		{
			name:    "valid entry",
			values:  map[string]interface{}{"data": `{"email_id":"abc"}`},
			payload: `{"email_id":"abc"}`,
		},
		{
			name:    "missing data field",
			values:  map[string]interface{}{"other": "x"},
			wantErr: true,
		},
		{
			name:    "non-string data field",
			values:  map[string]interface{}{"data": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decodeDelivery("email:received", redis.XMessage{ID: "1-0", Values: tt.values})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.stream != "email:received" {
				t.Errorf("stream = %q, want email:received", d.stream)
			}
			if d.id != "1-0" {
				t.Errorf("id = %q, want 1-0", d.id)
			}
			if string(d.payload) != tt.payload {
				t.Errorf("payload = %q, want %q", d.payload, tt.payload)
			}
		})
	}
}

func TestNewConsumerDefaults(t *testing.T) {
	c := NewConsumer(nil, &ConsumerConfig{
		Group:    "cargo-workers",
		Consumer: "worker-1",
		Streams:  []string{StreamEmailReceived},
		Logger:   zerolog.Nop(),
	})

	if c.pendingCheckInterval != defaultPendingCheckInterval {
		t.Errorf("pendingCheckInterval = %v, want %v", c.pendingCheckInterval, defaultPendingCheckInterval)
	}
	if c.pendingIdleTime != defaultPendingIdleTime {
		t.Errorf("pendingIdleTime = %v, want %v", c.pendingIdleTime, defaultPendingIdleTime)
	}
	if c.maxRetries != defaultMaxRetries {
		t.Errorf("maxRetries = %d, want %d", c.maxRetries, defaultMaxRetries)
	}
}

func TestDispatchLeavesFailedDeliveryPending(t *testing.T) {
	h := &recordingHandler{err: errors.New("transient failure")}
	c := NewConsumer(nil, &ConsumerConfig{
		Group:    "cargo-workers",
		Consumer: "worker-1",
		Streams:  []string{StreamEmailReceived},
		Handler:  h,
		Logger:   zerolog.Nop(),
	})

	// A failed handler must not ack. With a nil client the ack call would
	// panic, so reaching the end proves dispatch returned before acking.
	c.dispatch(context.Background(), delivery{
		stream:  StreamEmailReceived,
		id:      "1-0",
		payload: []byte(`{"email_id":"abc"}`),
	})

	if h.calls != 1 {
		t.Errorf("handler calls = %d, want 1", h.calls)
	}
}
