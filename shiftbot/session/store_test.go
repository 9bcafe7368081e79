package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(8)
	require.NoError(t, err)

	assert.Equal(t, StateIdle, store.Get("100").State)

	store.Set("100", Conversation{
		State:           StateAwaitingSaleAmount,
		PendingCategory: models.SaleCategoryTip,
	})
	conv := store.Get("100")
	assert.Equal(t, StateAwaitingSaleAmount, conv.State)
	assert.Equal(t, models.SaleCategoryTip, conv.PendingCategory)

	store.Reset("100")
	assert.Equal(t, StateIdle, store.Get("100").State)
}

func TestStoreEvictsOldestConversation(t *testing.T) {
	store, err := NewStore(2)
	require.NoError(t, err)

	store.Set("a", Conversation{State: StateAwaitingName})
	store.Set("b", Conversation{State: StateAwaitingName})
	store.Set("c", Conversation{State: StateAwaitingName})

	// "a" fell out; asking for it restarts at idle.
	assert.Equal(t, StateIdle, store.Get("a").State)
	assert.Equal(t, StateAwaitingName, store.Get("c").State)
}
