package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
)

type ChatRepository interface {
	GetOrCreateRoom(ctx context.Context, roomName string, listingID *uint64) (*models.ChatRoom, error)
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	FindMessages(ctx context.Context, roomID uint64) ([]*models.ChatMessage, error)
}

type chatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

// GetOrCreateRoom resolves a thread by its unique room name, creating
// it on first use. The insert ignores the duplicate-key race so two
// concurrent resolvers converge on the same room.
func (r *chatRepository) GetOrCreateRoom(ctx context.Context, roomName string, listingID *uint64) (*models.ChatRoom, error) {
	insert := `
		INSERT IGNORE INTO chat_rooms (room_name, listing_id, created_at)
		VALUES (?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, insert, roomName, listingID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to create chat room: %w", err)
	}

	query := `
		SELECT id, room_name, listing_id, created_at
		FROM chat_rooms
		WHERE room_name = ?
	`

	room := &models.ChatRoom{}
	err := r.db.QueryRowContext(ctx, query, roomName).Scan(
		&room.ID, &room.RoomName, &room.ListingID, &room.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find chat room: %w", err)
	}

	return room, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (room_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, msg.RoomID, msg.SenderID, msg.Content, now)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message id: %w", err)
	}

	msg.ID = uint64(id)
	msg.CreatedAt = now

	return nil
}

func (r *chatRepository) FindMessages(ctx context.Context, roomID uint64) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM chat_messages
		WHERE room_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
