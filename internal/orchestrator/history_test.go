package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStoreRoundTrip(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	entries := []Entry{
		{Role: RoleUser, Text: "create a note", Time: time.Now()},
		{Role: RoleAction, Action: "createItem", Args: map[string]any{"type": "note"}, Result: map[string]any{"success": true}, Time: time.Now()},
		{Role: RoleAssistant, Text: "Created.", Time: time.Now()},
	}
	require.NoError(t, store.Save("t1", entries))

	loaded, err := store.Load("t1")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, RoleAction, loaded[1].Role)
	assert.Equal(t, "createItem", loaded[1].Action)

	missing, err := store.Load("never-seen")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestThreadRecentWindow(t *testing.T) {
	th := newThread("t1")
	for i := 0; i < 5; i++ {
		th.append(Entry{Role: RoleUser, Text: string(rune('a' + i))})
	}

	recent := th.recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].Text)
	assert.Equal(t, "e", recent[1].Text)

	all := th.recent(50)
	assert.Len(t, all, 5)
}

func TestThreadBusyGuard(t *testing.T) {
	th := newThread("t1")
	require.NoError(t, th.begin())
	assert.ErrorIs(t, th.begin(), ErrThreadBusy)
	th.end()
	require.NoError(t, th.begin())
}
