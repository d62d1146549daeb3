// Package session persists conversations between HTTP turns.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"instantcredit-agents/internal/common/database"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/models"
)

// ErrNotFound is returned when no conversation exists for the given ID,
// typically because it expired.
var ErrNotFound = errors.New("conversation not found")

// Conversation is the unit of persistence: the dispatcher state plus the
// transcript so far.
type Conversation struct {
	ID        string                   `json:"id"`
	State     models.ConversationState `json:"state"`
	Messages  []models.ChatMessage     `json:"messages"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Store keeps conversations in Redis as JSON blobs with a sliding TTL.
type Store struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

// Create starts a new conversation shell around the given state.
func (s *Store) Create(ctx context.Context, state models.ConversationState) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.New().String(),
		State:     state,
		Messages:  []models.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get loads a conversation by ID.
func (s *Store) Get(ctx context.Context, id string) (*Conversation, error) {
	raw, err := s.redis.Get(ctx, key(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading conversation %s: %w", id, err)
	}

	var conv Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return nil, fmt.Errorf("decoding conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Save writes the conversation back and refreshes its TTL.
func (s *Store) Save(ctx context.Context, conv *Conversation) error {
	conv.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encoding conversation %s: %w", conv.ID, err)
	}
	if err := s.redis.Set(ctx, key(conv.ID), raw, s.ttl); err != nil {
		return fmt.Errorf("storing conversation %s: %w", conv.ID, err)
	}
	return nil
}

// Append records a chat message and persists the conversation.
func (s *Store) Append(ctx context.Context, conv *Conversation, msg models.ChatMessage) error {
	conv.Messages = append(conv.Messages, msg)
	return s.Save(ctx, conv)
}

// Delete removes a conversation. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, key(id))
}

func key(id string) string {
	return "conversation:" + id
}
