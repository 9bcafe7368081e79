// Package session keeps short-lived per-chat conversation state for the
// bot's multi-step flows. State lives in an in-memory LRU so an abandoned
// conversation eventually falls out instead of leaking.
package session

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
)

// State names the step a chat is waiting on.
type State int

const (
	StateIdle State = iota
	StateAwaitingName
	StateAwaitingSaleCategory
	StateAwaitingSaleAmount
)

// Conversation is the per-chat flow state. PendingQuestionID is set while a
// clock-in quiz is on screen; PendingCategory while a sale amount is awaited.
type Conversation struct {
	State             State
	PendingQuestionID int64
	PendingCategory   models.SaleCategory
}

// Store maps telegram user IDs to their in-flight conversation.
type Store struct {
	cache *lru.Cache
}

// NewStore creates a store bounded to size conversations.
func NewStore(size int) (*Store, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

// Get returns the conversation for a user, an idle one when absent.
func (s *Store) Get(userID string) Conversation {
	if v, ok := s.cache.Get(userID); ok {
		if conv, ok := v.(Conversation); ok {
			return conv
		}
	}
	return Conversation{State: StateIdle}
}

func (s *Store) Set(userID string, conv Conversation) {
	s.cache.Add(userID, conv)
}

// Reset returns the user to the idle state.
func (s *Store) Reset(userID string) {
	s.cache.Remove(userID)
}
