// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu            sync.RWMutex
	missions      []*Mission
	turns         []*ChatTurn
	gallery       []*GalleryEntry
	nextMissionID int64
	nextTurnID    int64
	nextGalleryID int64
}

// Compile-time check that MockStore satisfies Store
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		nextMissionID: 1,
		nextTurnID:    1,
		nextGalleryID: 1,
	}
}

// CreateMission stores a new mission.
func (m *MockStore) CreateMission(ctx context.Context, title, description string) (*Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mission := &Mission{
		ID:          m.nextMissionID,
		Title:       title,
		Description: description,
		Status:      MissionStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	m.nextMissionID++
	m.missions = append(m.missions, mission)

	// Return a copy
	result := *mission
	return &result, nil
}

// ListMissions returns all missions in creation order.
func (m *MockStore) ListMissions(ctx context.Context) ([]*Mission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Mission, 0, len(m.missions))
	for _, mission := range m.missions {
		c := *mission
		result = append(result, &c)
	}
	return result, nil
}

// UpdateMissionStatus flips a mission's status.
func (m *MockStore) UpdateMissionStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mission := range m.missions {
		if mission.ID == id {
			mission.Status = status
			return nil
		}
	}
	return ErrNotFound
}

// DeleteMission removes a mission.
func (m *MockStore) DeleteMission(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, mission := range m.missions {
		if mission.ID == id {
			m.missions = append(m.missions[:i], m.missions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// CountMissions returns the number of stored missions.
func (m *MockStore) CountMissions(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.missions), nil
}

// AppendChatTurn appends a turn to the conversation log.
func (m *MockStore) AppendChatTurn(ctx context.Context, role, content string) (*ChatTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	turn := &ChatTurn{
		ID:        m.nextTurnID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	m.nextTurnID++
	m.turns = append(m.turns, turn)

	result := *turn
	return &result, nil
}

// RecentChatTurns returns the most recent `limit` turns in chronological
// order. If limit is 0 or negative, all turns are returned.
func (m *MockStore) RecentChatTurns(ctx context.Context, limit int) ([]*ChatTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := 0
	if limit > 0 && len(m.turns) > limit {
		start = len(m.turns) - limit
	}

	result := make([]*ChatTurn, 0, len(m.turns)-start)
	for _, turn := range m.turns[start:] {
		c := *turn
		result = append(result, &c)
	}
	return result, nil
}

// ClearChatTurns deletes the entire conversation history.
func (m *MockStore) ClearChatTurns(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = nil
	return nil
}

// CountChatTurns returns the number of stored turns.
func (m *MockStore) CountChatTurns(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns), nil
}

// AddGalleryEntry stores a gallery entry.
func (m *MockStore) AddGalleryEntry(ctx context.Context, kind, url, prompt string) (*GalleryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &GalleryEntry{
		ID:        m.nextGalleryID,
		Kind:      kind,
		URL:       url,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
	m.nextGalleryID++
	m.gallery = append(m.gallery, entry)

	result := *entry
	return &result, nil
}

// ListGallery returns gallery entries newest first.
func (m *MockStore) ListGallery(ctx context.Context) ([]*GalleryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*GalleryEntry, 0, len(m.gallery))
	for i := len(m.gallery) - 1; i >= 0; i-- {
		c := *m.gallery[i]
		result = append(result, &c)
	}
	return result, nil
}

// DeleteGalleryEntry removes a gallery entry.
func (m *MockStore) DeleteGalleryEntry(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, entry := range m.gallery {
		if entry.ID == id {
			m.gallery = append(m.gallery[:i], m.gallery[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Ping always succeeds for the mock.
func (m *MockStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
