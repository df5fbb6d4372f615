package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

type stubSender struct {
	sent chan sentMessage
}

type sentMessage struct {
	chatID int64
	text   string
}

func (s *stubSender) SendMarkdown(_ context.Context, chatID int64, text string) error {
	s.sent <- sentMessage{chatID: chatID, text: text}
	return nil
}

func TestActionTakenDeliveredToChannel(t *testing.T) {
	sender := &stubSender{sent: make(chan sentMessage, 1)}
	svc := NewService(sender, -100999, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	user := model.EventUser{ID: 555, Username: "offender", FullName: "Off Ender"}
	svc.ActionTaken("Crypto Chat", user, enums.ActionMuted, "Crypto Address Detected", 2)

	select {
	case message := <-sender.sent:
		if message.chatID != -100999 {
			t.Fatalf("expected delivery to channel -100999, got %d", message.chatID)
		}
		if !strings.Contains(message.text, "Crypto Address Detected") {
			t.Fatalf("expected reason in notification, got %q", message.text)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("notification was not delivered")
	}
}

func TestEnqueueWithoutChannelIsNoop(t *testing.T) {
	sender := &stubSender{sent: make(chan sentMessage, 1)}
	svc := NewService(sender, 0, nil)

	svc.StrikesReset("Crypto Chat", "@offender")

	select {
	case message := <-sender.sent:
		t.Fatalf("unexpected delivery without a configured channel: %+v", message)
	default:
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	// No Run loop draining, so the queue fills and further messages are
	// dropped instead of blocking the caller.
	svc := NewService(&stubSender{sent: make(chan sentMessage)}, -100999, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < queueSize+10; i++ {
			svc.AllStrikesReset("Crypto Chat", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full queue")
	}
}
