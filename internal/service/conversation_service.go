package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/repository"
)

// ConversationService builds the conversation-list view: one row per peer
// with the latest message and unread count, enriched with the peer's
// profile snapshot. Pure read side, no state of its own.
type ConversationService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

func NewConversationService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *ConversationService {
	return &ConversationService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

func (s *ConversationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	summaries, err := s.messageRepo.LatestConversations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return []domain.ConversationSummary{}, nil
	}

	peerIDs := make([]uuid.UUID, 0, len(summaries))
	for _, s := range summaries {
		peerIDs = append(peerIDs, s.PeerID)
	}

	peers, err := s.userRepo.GetByIDs(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]domain.User, len(peers))
	for _, p := range peers {
		byID[p.ID] = p
	}

	for i := range summaries {
		p, ok := byID[summaries[i].PeerID]
		if !ok {
			continue
		}
		summaries[i].PeerUsername = p.Username
		summaries[i].PeerDisplayName = p.DisplayName
		summaries[i].PeerAvatarURL = p.AvatarURL
		summaries[i].PeerIsOnline = p.IsOnline
		summaries[i].PeerLastSeen = p.LastSeen
	}

	return summaries, nil
}
