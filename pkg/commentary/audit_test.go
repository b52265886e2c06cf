package commentary

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_ListByEntry_Pagination(t *testing.T) {
	store := NewAuditStore(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(&AuditEventRecord{
			ID:        fmt.Sprintf("ev-%d", i),
			EventType: EventStatusChanged,
			Actor:     "root",
			EntryID:   "e1",
			Outcome:   "success",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Append(&AuditEventRecord{
		ID: "other", EventType: EventEntryCreated, Actor: "root",
		EntryID: "e2", Outcome: "success", CreatedAt: base,
	}))

	// First page, newest first.
	page, next, err := store.ListByEntry("e1", 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ev-4", page[0].ID)
	assert.Equal(t, "ev-3", page[1].ID)
	require.NotEmpty(t, next)

	// Second page resumes where the first left off.
	page, next, err = store.ListByEntry("e1", 2, next)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ev-2", page[0].ID)
	assert.Equal(t, "ev-1", page[1].ID)
	require.NotEmpty(t, next)

	// Final partial page has no continuation token.
	page, next, err = store.ListByEntry("e1", 2, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ev-0", page[0].ID)
	assert.Empty(t, next)
}

func TestAuditStore_InvalidPageToken(t *testing.T) {
	store := NewAuditStore(newTestDB(t))
	_, _, err := store.ListByEntry("e1", 10, "not-a-timestamp")
	require.Error(t, err)
}
