package ticket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeUnderTest(t *testing.T, name string) Store {
	t.Helper()
	if name == "file" {
		s, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		return s
	}
	return NewInMemoryStore()
}

func TestStore_SaveGet(t *testing.T) {
	for _, name := range []string{"memory", "file"} {
		t.Run(name, func(t *testing.T) {
			store := storeUnderTest(t, name)

			err := store.Save(&Ticket{
				ID:      "T-1",
				Message: "My food was spilled",
				Status:  StatusOpen,
			})
			require.NoError(t, err)

			got, err := store.Get("T-1")
			require.NoError(t, err)
			assert.Equal(t, "My food was spilled", got.Message)
			assert.Equal(t, StatusOpen, got.Status)
			assert.False(t, got.CreatedAt.IsZero())
			assert.False(t, got.UpdatedAt.IsZero())
		})
	}
}

func TestStore_GetUnknown(t *testing.T) {
	for _, name := range []string{"memory", "file"} {
		t.Run(name, func(t *testing.T) {
			store := storeUnderTest(t, name)

			_, err := store.Get("nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Update(t *testing.T) {
	for _, name := range []string{"memory", "file"} {
		t.Run(name, func(t *testing.T) {
			store := storeUnderTest(t, name)
			require.NoError(t, store.Save(&Ticket{ID: "T-1", Status: StatusOpen}))

			updated, err := store.Update("T-1", func(tk *Ticket) {
				tk.Status = StatusPendingReview
				tk.RequiresHuman = true
			})
			require.NoError(t, err)
			assert.Equal(t, StatusPendingReview, updated.Status)
			assert.True(t, updated.RequiresHuman)

			got, err := store.Get("T-1")
			require.NoError(t, err)
			assert.Equal(t, StatusPendingReview, got.Status)

			_, err = store.Update("nope", func(tk *Ticket) {})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for _, name := range []string{"memory", "file"} {
		t.Run(name, func(t *testing.T) {
			store := storeUnderTest(t, name)
			require.NoError(t, store.Save(&Ticket{ID: "T-1"}))

			require.NoError(t, store.Delete("T-1"))
			_, err := store.Get("T-1")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, store.Delete("T-1"), ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	for _, name := range []string{"memory", "file"} {
		t.Run(name, func(t *testing.T) {
			store := storeUnderTest(t, name)
			require.NoError(t, store.Save(&Ticket{ID: "T-1"}))
			require.NoError(t, store.Save(&Ticket{ID: "T-2"}))

			all, err := store.List()
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestStore_ReturnedTicketIsIsolated(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save(&Ticket{ID: "T-1", Metadata: map[string]any{"category": "food_quality"}}))

	got, err := store.Get("T-1")
	require.NoError(t, err)
	got.Metadata["category"] = "mutated"
	got.Status = StatusResolved

	again, err := store.Get("T-1")
	require.NoError(t, err)
	assert.Equal(t, "food_quality", again.Metadata["category"])
	assert.NotEqual(t, StatusResolved, again.Status)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save(&Ticket{ID: "T-1", Message: "missing item", Category: "missing_incorrect_item"}))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get("T-1")
	require.NoError(t, err)
	assert.Equal(t, "missing item", got.Message)
	assert.Equal(t, "missing_incorrect_item", got.Category)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tickets.json"), []byte("{not json"), 0o644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}
