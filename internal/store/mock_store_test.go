// ABOUTME: Unit tests for MockStore to ensure behavior matches SQLiteStore
// ABOUTME: Focuses on window/order semantics and copy-on-return

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_MissionLifecycle(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	mission, err := m.CreateMission(ctx, "Make your bed", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), mission.ID)
	assert.Equal(t, MissionStatusPending, mission.Status)

	err = m.UpdateMissionStatus(ctx, mission.ID, MissionStatusCompleted)
	require.NoError(t, err)

	missions, err := m.ListMissions(ctx)
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.Equal(t, MissionStatusCompleted, missions[0].Status)

	err = m.DeleteMission(ctx, mission.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, m.DeleteMission(ctx, mission.ID), ErrNotFound)
}

func TestMockStore_RecentChatTurns_Window(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		_, err := m.AppendChatTurn(ctx, RoleUser, fmt.Sprintf("turn %d", i))
		require.NoError(t, err)
	}

	turns, err := m.RecentChatTurns(ctx, 6)
	require.NoError(t, err)
	require.Len(t, turns, 6)
	assert.Equal(t, "turn 3", turns[0].Content)
	assert.Equal(t, "turn 8", turns[5].Content)
}

func TestMockStore_ListGallery_NewestFirst(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	_, err := m.AddGalleryEntry(ctx, GalleryKindUploaded, "first", "")
	require.NoError(t, err)
	_, err = m.AddGalleryEntry(ctx, GalleryKindGenerated, "second", "a dragon")
	require.NoError(t, err)

	entries, err := m.ListGallery(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].URL)
}

func TestMockStore_CopiesOnReturn(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	created, err := m.CreateMission(ctx, "original", "")
	require.NoError(t, err)

	// Mutating the returned struct must not touch stored state
	created.Title = "mutated"

	missions, err := m.ListMissions(ctx)
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.Equal(t, "original", missions[0].Title)
}
