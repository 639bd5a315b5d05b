package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/dto"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/realtime"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMessageFieldsRequired = errors.New("receiver and content are required")
	ErrReceiverNotFound      = errors.New("receiver not found")
	ErrCannotMessageSelf     = errors.New("you cannot send a message to yourself")
	ErrSenderRequired        = errors.New("sender id is required")
)

// MessageService handles direct messages between users.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	publisher   Publisher
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, publisher Publisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisherOrNoop(publisher),
	}
}

// List returns the conversation with otherID when given, otherwise every
// message of the user, together with the user's unread count.
func (s *MessageService) List(ctx context.Context, userID uint64, otherID *uint64) ([]models.Message, int64, error) {
	var (
		messages []models.Message
		err      error
	)
	if otherID != nil {
		messages, err = s.messageRepo.ListConversation(ctx, userID, *otherID)
	} else {
		messages, err = s.messageRepo.ListForUser(ctx, userID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	unread, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return messages, unread, nil
}

// Send stores a message and pushes it to the receiver's open connections.
func (s *MessageService) Send(ctx context.Context, actor *models.User, receiverID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if receiverID == 0 || content == "" {
		return nil, ErrMessageFieldsRequired
	}
	if receiverID == actor.ID {
		return nil, ErrCannotMessageSelf
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("failed to find receiver: %w", err)
	}

	message := &models.Message{
		SenderID:   actor.ID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	saved, err := s.messageRepo.FindByID(ctx, message.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}

	s.publisher.Publish(receiverID, realtime.Event{Type: realtime.EventMessage, Data: dto.ToMessageDTO(*saved)})
	return saved, nil
}

// MarkRead marks every message from senderID to the user as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, senderID uint64) error {
	if senderID == 0 {
		return ErrSenderRequired
	}
	if _, err := s.messageRepo.MarkReadFrom(ctx, userID, senderID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}
