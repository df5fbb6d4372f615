package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
	"github.com/ReOneSec/SpyCrypto/internal/services/admin"
	"github.com/ReOneSec/SpyCrypto/internal/services/detect"
	"github.com/ReOneSec/SpyCrypto/internal/services/enforce"
)

type memoryLedger struct {
	strikes map[string]int
	records []model.ActionRecord
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{strikes: make(map[string]int)}
}

func (l *memoryLedger) key(chatID, userID int64) string {
	return fmt.Sprintf("%d/%d", chatID, userID)
}

func (l *memoryLedger) IncrementStrikes(_ context.Context, chatID, userID int64, _ string) (int, error) {
	key := l.key(chatID, userID)
	l.strikes[key]++
	return l.strikes[key], nil
}

func (l *memoryLedger) GetStrikes(_ context.Context, chatID, userID int64) (int, error) {
	return l.strikes[l.key(chatID, userID)], nil
}

func (l *memoryLedger) ListStrikes(_ context.Context, _ int64, _ int) ([]model.StrikeRecord, error) {
	return []model.StrikeRecord{}, nil
}

func (l *memoryLedger) ResetUser(_ context.Context, chatID, userID int64) (bool, error) {
	key := l.key(chatID, userID)
	_, existed := l.strikes[key]
	delete(l.strikes, key)
	return existed, nil
}

func (l *memoryLedger) ResetAll(_ context.Context, chatID int64) (int, error) {
	prefix := fmt.Sprintf("%d/", chatID)
	cleared := 0
	for key := range l.strikes {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(l.strikes, key)
			cleared++
		}
	}
	return cleared, nil
}

func (l *memoryLedger) LogAction(_ context.Context, record model.ActionRecord) error {
	l.records = append(l.records, record)
	return nil
}

type recordingGateway struct {
	deleted    int
	restricted int
	banned     int
}

func (g *recordingGateway) DeleteMessage(_ context.Context, _ int64, _ int) error {
	g.deleted++
	return nil
}

func (g *recordingGateway) SendMarkdown(_ context.Context, _ int64, _ string) error {
	return nil
}

func (g *recordingGateway) RestrictMember(_ context.Context, _, _ int64, _ time.Time) error {
	g.restricted++
	return nil
}

func (g *recordingGateway) BanMember(_ context.Context, _, _ int64) error {
	g.banned++
	return nil
}

// TestModerationLifecycle walks the full strike lifecycle for one user:
// three violations escalate warn, mute, ban; an admin reset returns the
// user to a clean slate, and the next violation warns again.
func TestModerationLifecycle(t *testing.T) {
	registry, err := detect.NewRegistry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	ledger := newMemoryLedger()
	gateway := &recordingGateway{}
	enforcer := enforce.NewService(gateway, ledger, nil, nil, 24*time.Hour)
	admins := admin.NewService(ledger, nil)

	ctx := context.Background()
	event := model.Event{
		Kind:      enums.EventNewMessage,
		ChatID:    -100123,
		ChatTitle: "Crypto Chat",
		IsGroup:   true,
		MessageID: 1,
		User:      model.EventUser{ID: 555, Username: "offender", FullName: "Off Ender"},
		Text:      "dm me, wallet 0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	}

	if !registry.Match(event.Text) {
		t.Fatalf("expected address in %q to be detected", event.Text)
	}

	expected := []enums.ActionKind{enums.ActionWarned, enums.ActionMuted, enums.ActionBanned}
	for i, want := range expected {
		result, err := enforcer.HandleViolation(ctx, event, "Crypto Address Detected")
		if err != nil {
			t.Fatalf("violation %d: %v", i+1, err)
		}
		if result.Action != want {
			t.Fatalf("violation %d: expected %s, got %s", i+1, want, result.Action)
		}
	}

	if gateway.deleted != 3 || gateway.restricted != 1 || gateway.banned != 1 {
		t.Fatalf("unexpected gateway calls: %+v", gateway)
	}

	existed, err := admins.ResetUser(ctx, event.ChatID, event.User.ID)
	if err != nil {
		t.Fatalf("reset user: %v", err)
	}
	if !existed {
		t.Fatalf("expected strike record to exist before reset")
	}

	strikes, err := admins.GetStrikes(ctx, event.ChatID, event.User.ID)
	if err != nil {
		t.Fatalf("get strikes: %v", err)
	}
	if strikes != 0 {
		t.Fatalf("expected clean slate after reset, got %d strikes", strikes)
	}

	result, err := enforcer.HandleViolation(ctx, event, "Crypto Address Detected")
	if err != nil {
		t.Fatalf("post-reset violation: %v", err)
	}
	if result.Action != enums.ActionWarned || result.Strikes != 1 {
		t.Fatalf("expected fresh warning after reset, got %+v", result)
	}

	// Ledger history keeps every decision, resets included.
	wantKinds := []enums.ActionKind{
		enums.ActionWarned, enums.ActionMuted, enums.ActionBanned,
		enums.ActionStrikesReset, enums.ActionWarned,
	}
	if len(ledger.records) != len(wantKinds) {
		t.Fatalf("expected %d ledger records, got %d", len(wantKinds), len(ledger.records))
	}
	for i, want := range wantKinds {
		if ledger.records[i].Action != want {
			t.Fatalf("record %d: expected %s, got %s", i, want, ledger.records[i].Action)
		}
	}
}

func TestResetAllClearsEveryOffender(t *testing.T) {
	ledger := newMemoryLedger()
	gateway := &recordingGateway{}
	enforcer := enforce.NewService(gateway, ledger, nil, nil, 24*time.Hour)
	admins := admin.NewService(ledger, nil)

	ctx := context.Background()
	chatID := int64(-100123)
	userIDs := []int64{101, 102, 103, 104, 105}

	for _, userID := range userIDs {
		event := model.Event{
			Kind:      enums.EventNewMessage,
			ChatID:    chatID,
			IsGroup:   true,
			MessageID: int(userID),
			User:      model.EventUser{ID: userID},
			Text:      "TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7",
		}
		if _, err := enforcer.HandleViolation(ctx, event, "Crypto Address Detected"); err != nil {
			t.Fatalf("violation for user %d: %v", userID, err)
		}
	}

	cleared, err := admins.ResetAll(ctx, chatID)
	if err != nil {
		t.Fatalf("reset all: %v", err)
	}
	if cleared != len(userIDs) {
		t.Fatalf("expected %d cleared records, got %d", len(userIDs), cleared)
	}

	for _, userID := range userIDs {
		strikes, err := admins.GetStrikes(ctx, chatID, userID)
		if err != nil {
			t.Fatalf("get strikes for user %d: %v", userID, err)
		}
		if strikes != 0 {
			t.Fatalf("expected user %d zeroed, got %d strikes", userID, strikes)
		}
	}
}
