package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
)

type ChatThread struct {
	RoomName string                   `json:"room_name"`
	Messages []*models.ChatMessageDTO `json:"messages"`
}

type ChatService interface {
	ListingThread(ctx context.Context, listingID uint64) (*ChatThread, error)
	TransactionThread(ctx context.Context, transactionID string, actorID uint64) (*ChatThread, error)
	PostToListing(ctx context.Context, listingID, senderID uint64, content string) (*models.ChatMessageDTO, error)
	PostToTransaction(ctx context.Context, transactionID string, senderID uint64, content string) (*models.ChatMessageDTO, error)
	TransactionEvent(ctx context.Context, txn *models.Transaction, event string) error
}

type chatService struct {
	chatRepo        repository.ChatRepository
	listingRepo     repository.ListingRepository
	transactionRepo repository.TransactionRepository
}

func NewChatService(
	chatRepo repository.ChatRepository,
	listingRepo repository.ListingRepository,
	transactionRepo repository.TransactionRepository,
) ChatService {
	return &chatService{
		chatRepo:        chatRepo,
		listingRepo:     listingRepo,
		transactionRepo: transactionRepo,
	}
}

func listingRoomName(listingID uint64) string {
	return fmt.Sprintf("listing-%d", listingID)
}

func transactionRoomName(transactionID string) string {
	return fmt.Sprintf("txn-%s", transactionID)
}

func (s *chatService) ListingThread(ctx context.Context, listingID uint64) (*ChatThread, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	room, err := s.chatRepo.GetOrCreateRoom(ctx, listingRoomName(listing.ID), &listing.ID)
	if err != nil {
		return nil, err
	}

	return s.thread(ctx, room.RoomName, room.ID)
}

// TransactionThread resolves the per-transaction room. Only the two
// parties of the transaction may read it.
func (s *chatService) TransactionThread(ctx context.Context, transactionID string, actorID uint64) (*ChatThread, error) {
	txn, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if actorID != txn.BuyerID && actorID != txn.SellerID {
		return nil, models.ErrNotAuthorized
	}

	room, err := s.chatRepo.GetOrCreateRoom(ctx, transactionRoomName(txn.ID), &txn.ListingID)
	if err != nil {
		return nil, err
	}

	return s.thread(ctx, room.RoomName, room.ID)
}

func (s *chatService) PostToListing(ctx context.Context, listingID, senderID uint64, content string) (*models.ChatMessageDTO, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	room, err := s.chatRepo.GetOrCreateRoom(ctx, listingRoomName(listing.ID), &listing.ID)
	if err != nil {
		return nil, err
	}

	return s.post(ctx, room.ID, &senderID, content)
}

func (s *chatService) PostToTransaction(ctx context.Context, transactionID string, senderID uint64, content string) (*models.ChatMessageDTO, error) {
	txn, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if senderID != txn.BuyerID && senderID != txn.SellerID {
		return nil, models.ErrNotAuthorized
	}

	room, err := s.chatRepo.GetOrCreateRoom(ctx, transactionRoomName(txn.ID), &txn.ListingID)
	if err != nil {
		return nil, err
	}

	return s.post(ctx, room.ID, &senderID, content)
}

// TransactionEvent posts a system message (no sender) into the
// transaction's room so both parties see the settlement outcome.
func (s *chatService) TransactionEvent(ctx context.Context, txn *models.Transaction, event string) error {
	room, err := s.chatRepo.GetOrCreateRoom(ctx, transactionRoomName(txn.ID), &txn.ListingID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Transaction %s %s", txn.ID, event)
	_, err = s.post(ctx, room.ID, nil, content)
	return err
}

func (s *chatService) thread(ctx context.Context, roomName string, roomID uint64) (*ChatThread, error) {
	messages, err := s.chatRepo.FindMessages(ctx, roomID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*models.ChatMessageDTO, len(messages))
	for i, msg := range messages {
		dtos[i] = messageToDTO(msg)
	}

	return &ChatThread{RoomName: roomName, Messages: dtos}, nil
}

func (s *chatService) post(ctx context.Context, roomID uint64, senderID *uint64, content string) (*models.ChatMessageDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is empty")
	}

	msg := &models.ChatMessage{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}

	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	return messageToDTO(msg), nil
}

func messageToDTO(msg *models.ChatMessage) *models.ChatMessageDTO {
	return &models.ChatMessageDTO{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
}
