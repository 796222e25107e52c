package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diogo/folio/internal/models"
)

func TestMockTransport_Records(t *testing.T) {
	mock := &MockTransport{Reply: "hi"}
	history := []models.WireMessage{{Role: models.RoleUser, Content: "earlier"}}

	reply, err := mock.Send(context.Background(), "hello", history)
	if err != nil || reply != "hi" {
		t.Fatalf("Send() = %q, %v", reply, err)
	}

	text, got := mock.Recorded()
	if text != "hello" || len(got) != 1 || got[0].Content != "earlier" {
		t.Errorf("Recorded() = %q, %+v", text, got)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount() = %d", mock.CallCount())
	}
}

func TestMockTransport_SendFunc(t *testing.T) {
	boom := errors.New("boom")
	mock := &MockTransport{Reply: "ignored", SendFunc: func(context.Context, string, []models.WireMessage) (string, error) {
		return "", boom
	}}
	if _, err := mock.Send(context.Background(), "x", nil); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

func TestBlockingSend(t *testing.T) {
	mock := &MockTransport{SendFunc: BlockingSend()}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.Send(ctx, "x", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}
