// Package server hosts the cosmo-server HTTP surface.
//
// # Overview
//
// The server package is the central coordinator of cosmo-server. It owns
// and manages all major components: the SQLite store, the license gate,
// the Gemini AI client, the chat/image dispatcher, and the HTTP server
// with its plain-TCP or Tailscale listener.
//
// # Server Struct
//
// The Server struct is the main entry point:
//
//	type Server struct {
//	    config     *config.Config
//	    store      store.Store
//	    ai         aiClient
//	    gate       *license.Gate
//	    challenge  *dispatch.Challenge
//	    dispatcher *dispatch.Service
//	    httpServer *http.Server
//	    // ... and more
//	}
//
// # HTTP API
//
// Open routes:
//
//   - GET /api/health - Liveness: status, ai_configured, db_connected
//   - GET /api/challenge - Daily-challenge state for the UI badge
//   - GET /api/tasks - List missions (seeds starters when empty)
//   - POST /api/tasks - Create a mission
//   - PATCH /api/tasks/{id} - Update mission status
//   - DELETE /api/tasks/{id} - Delete a mission
//   - GET /api/gallery - List gallery entries, newest first
//   - POST /api/gallery/upload - Add an image to the gallery
//   - DELETE /api/gallery/{id} - Delete a gallery entry
//
// Gated routes (x-license-key header required when keys are configured):
//
//   - GET /api/chat - Chat history (seeds the welcome turn when empty);
//     ?format=html adds goldmark-rendered markdown per turn
//   - POST /api/chat - Dispatch one message (chat, generate, or edit)
//   - DELETE /api/chat - Clear the chat history
//   - POST /api/generate-image - Generate an image (pure proxy)
//   - POST /api/edit-image - Edit an image (pure proxy)
//
// A denied gated request gets 403 with {"response": <sleepy message>} so
// the UI can render it as a chat bubble. Other errors use {"error": msg}.
//
// # Seeding
//
// First reads seed initial content: GET /api/tasks creates the three
// starter missions when the table is empty, and GET /api/chat appends the
// Cosmo welcome turn when the history is empty. Clearing the chat and
// re-reading therefore yields exactly one welcome turn.
//
// # Lifecycle
//
// Start the server:
//
//	srv, err := server.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	err = srv.Run(ctx)
//
// Run blocks until the context is canceled or the listener fails, then
// performs graceful shutdown with a 5 second timeout. With
// tailscale.enabled the server joins the tailnet via tsnet instead of
// binding a local TCP port, optionally with HTTPS certs or a public
// Funnel.
//
// # Key Files
//
//   - server.go: Server struct, wiring, Run/Shutdown, listeners, health
//   - chat.go: chat history, dispatch, and clear handlers
//   - tasks.go: mission handlers and starter seeding
//   - gallery.go: gallery handlers
//   - images.go: standalone image proxy handlers
//   - middleware.go: request-id logging and CORS
package server
