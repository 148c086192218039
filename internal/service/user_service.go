package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/repository"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCannotContactSelf = errors.New("cannot add yourself as a contact")
	ErrStatusTooLong     = errors.New("status text exceeds 139 characters")
)

const maxStatusTextLength = 139

// UserService is the user-directory: profile lookups, presence persistence
// and the contact relation used by presence fan-out.
type UserService struct {
	userRepo    repository.UserRepository
	contactRepo repository.ContactRepository
}

func NewUserService(userRepo repository.UserRepository, contactRepo repository.ContactRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		contactRepo: contactRepo,
	}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateStatusText(ctx context.Context, userID uuid.UUID, statusText string) (string, error) {
	statusText = strings.TrimSpace(statusText)
	if utf8.RuneCountInString(statusText) > maxStatusTextLength {
		return "", ErrStatusTooLong
	}

	if err := s.userRepo.UpdateStatusText(ctx, userID, statusText); err != nil {
		return "", fmt.Errorf("updating status text: %w", err)
	}
	return statusText, nil
}

func (s *UserService) SetPresence(ctx context.Context, userID uuid.UUID, online bool) error {
	return s.userRepo.SetPresence(ctx, userID, online, time.Now())
}

func (s *UserService) TouchLastSeen(ctx context.Context, userIDs []uuid.UUID) error {
	return s.userRepo.TouchLastSeen(ctx, userIDs, time.Now())
}

func (s *UserService) AddContact(ctx context.Context, userID, contactID uuid.UUID) error {
	if userID == contactID {
		return ErrCannotContactSelf
	}

	other, err := s.userRepo.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if other == nil {
		return ErrUserNotFound
	}

	return s.contactRepo.Add(ctx, userID, contactID)
}

func (s *UserService) RemoveContact(ctx context.Context, userID, contactID uuid.UUID) error {
	return s.contactRepo.Remove(ctx, userID, contactID)
}

func (s *UserService) ListContacts(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	contacts, err := s.contactRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return contacts, nil
}

// ContactIDs backs the gateway's presence and status broadcasts.
func (s *UserService) ContactIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.contactRepo.ListIDs(ctx, userID)
}
