// ABOUTME: Store interface and data types for cosmo-server persistence
// ABOUTME: Defines Mission, ChatTurn, GalleryEntry structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Mission status constants
const (
	MissionStatusPending   = "pending"
	MissionStatusCompleted = "completed"
)

// Chat turn role constants
const (
	RoleUser  = "user"  // Message authored by the kid
	RoleModel = "model" // Message authored by the AI buddy
)

// Gallery entry kind constants
const (
	GalleryKindUploaded  = "uploaded"  // Image uploaded by the user
	GalleryKindGenerated = "generated" // Image produced by the AI
)

// Mission represents a task/to-do item with binary completion state
type Mission struct {
	ID          int64
	Title       string
	Description string
	Status      string // "pending" or "completed"
	CreatedAt   time.Time
}

// ChatTurn represents one message in the conversational log.
// Turns are append-only; the only destructive operation is a full clear.
type ChatTurn struct {
	ID        int64
	Role      string // "user" or "model"
	Content   string
	CreatedAt time.Time
}

// GalleryEntry represents a stored image reference, either user-uploaded
// or AI-generated. URLs are data URIs or external URLs; entries are never
// mutated in place.
type GalleryEntry struct {
	ID        int64
	Kind      string // "uploaded" or "generated"
	URL       string
	Prompt    string // empty for uploads
	CreatedAt time.Time
}

// Store defines the interface for mission, chat, and gallery persistence
type Store interface {
	// Missions
	CreateMission(ctx context.Context, title, description string) (*Mission, error)
	ListMissions(ctx context.Context) ([]*Mission, error)
	UpdateMissionStatus(ctx context.Context, id int64, status string) error
	DeleteMission(ctx context.Context, id int64) error
	CountMissions(ctx context.Context) (int, error)

	// Chat turns
	AppendChatTurn(ctx context.Context, role, content string) (*ChatTurn, error)
	RecentChatTurns(ctx context.Context, limit int) ([]*ChatTurn, error)
	ClearChatTurns(ctx context.Context) error
	CountChatTurns(ctx context.Context) (int, error)

	// Gallery
	AddGalleryEntry(ctx context.Context, kind, url, prompt string) (*GalleryEntry, error)
	ListGallery(ctx context.Context) ([]*GalleryEntry, error)
	DeleteGalleryEntry(ctx context.Context, id int64) error

	// Ping verifies the underlying engine is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
