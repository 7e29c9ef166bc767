// ABOUTME: Gemini REST client adapter for chat and image generation
// ABOUTME: Wraps generateContent calls with kid-safe defaults and typed errors

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no provider API key is present.
// The server keeps running; AI routes fail fast with this error.
var ErrNotConfigured = errors.New("AI provider not configured")

// ErrProvider wraps any failure or empty result from the provider.
// Callers branch on it with errors.Is and never show the raw cause to
// the kid.
var ErrProvider = errors.New("provider error")

// Prompt templates applied before submission
const (
	imageStyleTemplate      = "vibrant, high-quality, futuristic, kid-friendly 3D illustration of: %s. Bright colors, soft rounded shapes, glossy finish, no text in the image"
	editInstructionTemplate = "Apply this edit to the image: %s. Keep it fun and kid-friendly!"
)

// Turn is one prior conversation message passed as provider context
type Turn struct {
	Role    string // "user" or "model"
	Content string
}

// Image is an encoded image returned by (or submitted to) the provider
type Image struct {
	MimeType string
	Data     string // base64 encoded
}

// DataURI renders the image as a data URI suitable for inline display
// and gallery persistence.
func (img *Image) DataURI() string {
	return "data:" + img.MimeType + ";base64," + img.Data
}

// ParseDataURI splits a data URI into an Image. Raw base64 without a
// data: prefix is accepted and assumed to be PNG.
func ParseDataURI(s string) (*Image, error) {
	if !strings.HasPrefix(s, "data:") {
		if s == "" {
			return nil, fmt.Errorf("empty image data")
		}
		return &Image{MimeType: "image/png", Data: s}, nil
	}

	rest := strings.TrimPrefix(s, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return nil, fmt.Errorf("unsupported data URI encoding")
	}

	mime := rest[:semi]
	data := rest[semi+len(";base64,"):]
	if mime == "" || data == "" {
		return nil, fmt.Errorf("malformed data URI")
	}

	return &Image{MimeType: mime, Data: data}, nil
}

// Config holds what the client needs to reach the provider
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	ImageModel     string
	RequestTimeout time.Duration
}

// Client is a minimal Gemini REST client covering the three operations
// the dispatcher needs: chat completion, image generation, image edit.
type Client struct {
	apiKey     string
	baseURL    string
	chatModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a provider client. An empty API key is allowed: the client
// is then unconfigured and every call returns ErrNotConfigured.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "genai"),
	}
}

// Configured reports whether a provider API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ChatComplete sends the conversation window plus the persona instruction
// and returns the model's text reply.
func (c *Client) ChatComplete(ctx context.Context, history []Turn, systemInstruction string, temperature, topP float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	contents := make([]content, 0, len(history))
	for _, turn := range history {
		contents = append(contents, content{
			Role:  turn.Role,
			Parts: []part{{Text: turn.Content}},
		})
	}

	req := generateRequest{
		Contents: contents,
		SystemInstruction: &content{
			Parts: []part{{Text: systemInstruction}},
		},
		GenerationConfig: &generationConfig{
			Temperature: temperature,
			TopP:        topP,
		},
		SafetySettings: kidSafetySettings(),
	}

	resp, err := c.generate(ctx, c.chatModel, req)
	if err != nil {
		return "", err
	}

	return firstText(resp)
}

// GenerateImage asks the image model for a picture of the prompt.
// The prompt is wrapped in the fixed kid-friendly style template.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	styled := fmt.Sprintf(imageStyleTemplate, prompt)
	req := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: styled}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
		SafetySettings: kidSafetySettings(),
	}

	resp, err := c.generate(ctx, c.imageModel, req)
	if err != nil {
		return nil, err
	}

	return firstImage(resp)
}

// EditImage submits the source image plus an edit instruction and
// returns the edited image.
func (c *Client) EditImage(ctx context.Context, prompt string, source *Image) (*Image, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if source == nil {
		return nil, fmt.Errorf("%w: no source image to edit", ErrProvider)
	}

	instruction := fmt.Sprintf(editInstructionTemplate, prompt)
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: instruction},
				{InlineData: &inlineData{MimeType: source.MimeType, Data: source.Data}},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
		SafetySettings: kidSafetySettings(),
	}

	resp, err := c.generate(ctx, c.imageModel, req)
	if err != nil {
		return nil, err
	}

	return firstImage(resp)
}

// generate posts a generateContent request and decodes the response.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) (*generateResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling provider", "model", model, "contents", len(req.Contents))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %w", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("provider returned error", "model", model, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrProvider, err)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked: %s", ErrProvider, genResp.PromptFeedback.BlockReason)
	}

	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrProvider)
	}

	return &genResp, nil
}

// firstText scans the first candidate's parts for a text part.
// A response with no recognized text part is a provider error.
func firstText(resp *generateResponse) (string, error) {
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no recognized text part in response", ErrProvider)
}

// firstImage scans the first candidate's parts for inline image data.
// A response with no recognized image part is a provider error.
func firstImage(resp *generateResponse) (*Image, error) {
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			mime := p.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return &Image{MimeType: mime, Data: p.InlineData.Data}, nil
		}
	}
	return nil, fmt.Errorf("%w: no recognized image part in response", ErrProvider)
}

// kidSafetySettings blocks at the lowest threshold across all harm
// categories. The audience is kids; nothing borderline gets through.
func kidSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}

	settings := make([]safetySetting, len(categories))
	for i, category := range categories {
		settings[i] = safetySetting{
			Category:  category,
			Threshold: "BLOCK_LOW_AND_ABOVE",
		}
	}

	return settings
}
