package privilege

import (
	"context"
	"fmt"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
)

type MembershipGateway interface {
	GetChatMember(ctx context.Context, chatID, userID int64) (enums.MemberStatus, error)
}

// Service answers whether an actor is exempt from moderation in a chat.
// Decisions are never cached; every check hits the transport.
type Service struct {
	gateway MembershipGateway
}

func NewService(gateway MembershipGateway) *Service {
	return &Service{gateway: gateway}
}

// IsExempt reports whether the user holds administrator or creator
// status in the chat. A failed membership query is returned unchanged:
// the caller must suppress enforcement for that event rather than guess
// either way.
func (s *Service) IsExempt(ctx context.Context, chatID, userID int64) (bool, error) {
	if s.gateway == nil {
		return false, fmt.Errorf("membership gateway is not configured")
	}

	status, err := s.gateway.GetChatMember(ctx, chatID, userID)
	if err != nil {
		return false, fmt.Errorf("get chat member %d in chat %d: %w", userID, chatID, err)
	}
	return status.IsPrivileged(), nil
}
