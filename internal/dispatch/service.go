// ABOUTME: Chat/image dispatcher orchestrating gate, classifier, provider, and store
// ABOUTME: Every turn is persisted - history is the source of truth, not a side effect

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cosmohq/cosmo-server/internal/genai"
	"github.com/cosmohq/cosmo-server/internal/intent"
	"github.com/cosmohq/cosmo-server/internal/license"
	"github.com/cosmohq/cosmo-server/internal/store"
)

// ErrEmptyMessage is returned for empty or whitespace-only input
var ErrEmptyMessage = errors.New("message is empty")

// DefaultPersona is the fixed system instruction for the Cosmo buddy.
const DefaultPersona = "You are Cosmo, a cheerful space buddy for kids aged 5-10. " +
	"Keep replies short, warm, and encouraging. Use simple words a young kid understands. " +
	"Sprinkle in space themes and the occasional emoji. Never discuss scary, violent, or " +
	"grown-up topics; if asked, gently steer back to fun things like drawing, missions, and space facts."

// FallbackReply is sent (and persisted) whenever the provider fails.
const FallbackReply = "Oops, my space brain glitched! Can you say that again? 🛸"

// WelcomeMessage seeds an empty chat history so the buddy speaks first.
const WelcomeMessage = "Hi! I'm Cosmo, your space buddy! 🚀 Ask me anything, or say \"show me\" and I'll draw you a picture!"

// Fixed confirmation texts persisted as model turns after image work
const (
	generatedConfirmation = "Here is the picture of %s I made for you! 🌟"
	editedConfirmation    = "I fixed up your picture! Take a look! ✨"
	editPromptPrefix      = "Edit: "
)

// DispatchStore defines what the dispatcher needs from storage
type DispatchStore interface {
	AppendChatTurn(ctx context.Context, role, content string) (*store.ChatTurn, error)
	RecentChatTurns(ctx context.Context, limit int) ([]*store.ChatTurn, error)
	AddGalleryEntry(ctx context.Context, kind, url, prompt string) (*store.GalleryEntry, error)
}

// Provider defines what the dispatcher needs from the AI adapter
type Provider interface {
	Configured() bool
	ChatComplete(ctx context.Context, history []genai.Turn, systemInstruction string, temperature, topP float64) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*genai.Image, error)
	EditImage(ctx context.Context, prompt string, source *genai.Image) (*genai.Image, error)
}

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Persona       string
	Temperature   float64
	TopP          float64
	HistoryWindow int
}

// Service is the chat/image dispatcher. It holds no cross-call state
// besides the daily challenge; conversational context is re-derived from
// the store on every call.
type Service struct {
	store     DispatchStore
	ai        Provider
	gate      *license.Gate
	challenge *Challenge
	opts      Options
	logger    *slog.Logger
}

// New creates a dispatcher.
func New(st DispatchStore, ai Provider, gate *license.Gate, challenge *Challenge, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Persona == "" {
		opts.Persona = DefaultPersona
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.9
	}
	if opts.TopP == 0 {
		opts.TopP = 0.95
	}
	if opts.HistoryWindow == 0 {
		opts.HistoryWindow = 6
	}
	if challenge == nil {
		challenge = NewChallenge()
	}
	if gate == nil {
		gate = license.NewGate(nil, logger)
	}

	return &Service{
		store:     st,
		ai:        ai,
		gate:      gate,
		challenge: challenge,
		opts:      opts,
		logger:    logger.With("component", "dispatch"),
	}
}

// Challenge exposes the shared daily-challenge state.
func (s *Service) Challenge() *Challenge {
	return s.challenge
}

// Request is one inbound chat message.
type Request struct {
	Text       string
	LicenseKey string
	Image      *genai.Image // image currently under edit, nil if none
}

// Result is what the presentation layer renders: a reply bubble, plus an
// image and its prompt when one was produced.
type Result struct {
	Reply       string
	ImageURL    string
	ImagePrompt string
}

// Handle runs one message through the full pipeline: gate, persist the
// user turn, classify, call the provider, persist the outcome.
//
// Key principle: record first, then act. The user's turn is saved before
// the provider is called, so a provider failure still leaves the
// question in the history. Provider failures turn into the fixed
// fallback reply; only gate, configuration, and store failures surface
// as errors.
func (s *Service) Handle(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyMessage
	}

	if err := s.gate.Check(req.LicenseKey); err != nil {
		s.logger.Debug("dispatch denied by license gate")
		return nil, err
	}

	if !s.ai.Configured() {
		return nil, genai.ErrNotConfigured
	}

	// A disconnecting caller must not abort the provider call or lose
	// the reply; from here the request runs to completion and the
	// transport simply drops the response.
	ctx = context.WithoutCancel(ctx)

	requestID := uuid.New().String()
	logger := s.logger.With("request_id", requestID)

	if _, err := s.store.AppendChatTurn(ctx, store.RoleUser, req.Text); err != nil {
		return nil, fmt.Errorf("recording user turn: %w", err)
	}

	it := intent.Classify(req.Text, req.Image != nil)
	logger.Debug("message classified", "kind", it.Kind)

	if it.Kind == intent.GenerateImage {
		if points, completed := s.challenge.TryComplete(req.Text); completed {
			logger.Info("daily challenge completed", "points", points)
		}
	}

	switch it.Kind {
	case intent.GenerateImage:
		return s.generate(ctx, logger, it.Prompt)
	case intent.EditImage:
		return s.edit(ctx, logger, it.Prompt, req.Image)
	default:
		return s.chat(ctx, logger)
	}
}

// chat assembles the recent history window and asks for a text reply.
func (s *Service) chat(ctx context.Context, logger *slog.Logger) (*Result, error) {
	history, err := s.store.RecentChatTurns(ctx, s.opts.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("loading chat history: %w", err)
	}

	turns := make([]genai.Turn, 0, len(history))
	for _, t := range history {
		turns = append(turns, genai.Turn{Role: t.Role, Content: t.Content})
	}

	reply, err := s.ai.ChatComplete(ctx, turns, s.opts.Persona, s.opts.Temperature, s.opts.TopP)
	if err != nil {
		return s.fallback(ctx, logger, err)
	}

	if _, err := s.store.AppendChatTurn(ctx, store.RoleModel, reply); err != nil {
		return nil, fmt.Errorf("recording model turn: %w", err)
	}

	logger.Debug("chat reply recorded", "context_turns", len(turns))
	return &Result{Reply: reply}, nil
}

// generate draws a new picture, saves it to the gallery, and confirms in chat.
func (s *Service) generate(ctx context.Context, logger *slog.Logger, prompt string) (*Result, error) {
	img, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		return s.fallback(ctx, logger, err)
	}

	url := img.DataURI()
	if _, err := s.store.AddGalleryEntry(ctx, store.GalleryKindGenerated, url, prompt); err != nil {
		return nil, fmt.Errorf("recording gallery entry: %w", err)
	}

	confirmation := fmt.Sprintf(generatedConfirmation, prompt)
	if _, err := s.store.AppendChatTurn(ctx, store.RoleModel, confirmation); err != nil {
		return nil, fmt.Errorf("recording model turn: %w", err)
	}

	logger.Debug("image generated", "prompt", prompt)
	return &Result{Reply: confirmation, ImageURL: url, ImagePrompt: prompt}, nil
}

// edit applies the instruction to the image under edit, saves the result,
// and confirms in chat. A successful edit replaces the caller's selection;
// the UI clears it when this result arrives.
func (s *Service) edit(ctx context.Context, logger *slog.Logger, prompt string, source *genai.Image) (*Result, error) {
	img, err := s.ai.EditImage(ctx, prompt, source)
	if err != nil {
		return s.fallback(ctx, logger, err)
	}

	url := img.DataURI()
	if _, err := s.store.AddGalleryEntry(ctx, store.GalleryKindGenerated, url, editPromptPrefix+prompt); err != nil {
		return nil, fmt.Errorf("recording gallery entry: %w", err)
	}

	if _, err := s.store.AppendChatTurn(ctx, store.RoleModel, editedConfirmation); err != nil {
		return nil, fmt.Errorf("recording model turn: %w", err)
	}

	logger.Debug("image edited", "prompt", prompt)
	return &Result{Reply: editedConfirmation, ImageURL: url, ImagePrompt: prompt}, nil
}

// fallback persists and returns the fixed fallback reply after a
// provider failure. No gallery entry is written on this path.
func (s *Service) fallback(ctx context.Context, logger *slog.Logger, cause error) (*Result, error) {
	logger.Warn("provider call failed, sending fallback reply", "error", cause)

	if _, err := s.store.AppendChatTurn(ctx, store.RoleModel, FallbackReply); err != nil {
		return nil, fmt.Errorf("recording fallback turn: %w", err)
	}

	return &Result{Reply: FallbackReply}, nil
}
