// Package illustration consumes the external illustration service as a
// black box: one POST per page, 30 second budget, progressive scene
// sanitation on content blocks. Failures are never fatal; a page simply
// ships without its picture.
package illustration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/outline"
)

const (
	endpoint    = "/api/generate-illustration"
	callTimeout = 30 * time.Second
	maxAttempts = 4 // original, word-list sanitized, atmospheric, safe fallback
)

// Request mirrors the service's JSON contract. Prompt carries the
// fully composed instruction string (style guides, panel layout and
// per-character actions already folded in); the structured fields ride
// along so the service can run its own safety checks.
type Request struct {
	Scene                *outline.Scene `json:"scene"`
	Prompt               string         `json:"prompt,omitempty"`
	PanelLayout          string         `json:"panelLayout,omitempty"`
	ArtStyle             string         `json:"artStyle"`
	Characters           []string       `json:"characters,omitempty"`
	Setting              string         `json:"setting,omitempty"`
	BookTitle            string         `json:"bookTitle,omitempty"`
	CharacterVisualGuide string         `json:"characterVisualGuide,omitempty"`
	VisualStyleGuide     string         `json:"visualStyleGuide,omitempty"`
	BookFormat           string         `json:"bookFormat,omitempty"`
	ReferenceImages      []string       `json:"referenceImages,omitempty"`
}

// Image is a returned illustration.
type Image struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
	AltText  string `json:"altText,omitempty"`
}

type response struct {
	Image   *Image `json:"image"`
	AltText string `json:"altText"`
	Blocked bool   `json:"blocked"`
	Error   string `json:"error"`
}

// Client calls the illustration service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client against the app's base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: callTimeout},
		logger:     slog.Default().With("component", "illustration_client"),
	}
}

// WithLogger sets a custom logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger.With("component", "illustration_client")
	return c
}

// WithHTTPClient replaces the transport; used by tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Generate requests one illustration, sanitizing the scene a little
// harder on each blocked attempt and substituting a fully safe fallback
// scene on the last.
func (c *Client) Generate(ctx context.Context, req Request, chapterTitle string) (*Image, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		attemptReq := req
		attemptReq.Scene = sanitizedScene(req.Scene, attempt, chapterTitle, req.Setting)
		if attempt > 0 {
			// The composed prompt embeds the original scene wording;
			// sanitized retries drop it and let the sanitized scene
			// drive the service instead.
			attemptReq.Prompt = ""
		}

		img, blocked, err := c.post(ctx, attemptReq)
		if err == nil && img != nil {
			return img, nil
		}
		if err != nil {
			lastErr = err
		} else if blocked {
			lastErr = fmt.Errorf("illustration blocked on attempt %d", attempt+1)
		}

		c.logger.Warn("illustration attempt failed",
			"attempt", attempt+1,
			"blocked", blocked,
			"error", lastErr)
	}

	return nil, fmt.Errorf("illustration failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, req Request) (*Image, bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, false, fmt.Errorf("encoding illustration request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("creating illustration request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("calling illustration service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("reading illustration response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("illustration service status %d: %s", resp.StatusCode, respBody)
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, false, fmt.Errorf("decoding illustration response: %w", err)
	}
	if parsed.Blocked {
		return nil, true, nil
	}
	if parsed.Image == nil {
		return nil, false, fmt.Errorf("illustration response carried no image")
	}
	if parsed.Image.AltText == "" {
		parsed.Image.AltText = parsed.AltText
	}
	return parsed.Image, false, nil
}

// sanitizedScene escalates: attempt 0 passes through, attempt 1 runs
// the word-list sanitizer, attempt 2 refocuses on atmosphere, and the
// final fallback is rebuilt from just the chapter title and setting.
func sanitizedScene(scene *outline.Scene, attempt int, chapterTitle, setting string) *outline.Scene {
	if scene == nil {
		scene = &outline.Scene{}
	}

	switch attempt {
	case 0:
		return scene
	case 1:
		cp := *scene
		cp.Description = heat.Sanitize(scene.Description)
		actions := make(map[string]string, len(scene.CharacterActions))
		for name, action := range scene.CharacterActions {
			actions[name] = heat.Sanitize(action)
		}
		cp.CharacterActions = actions
		return &cp
	case 2:
		cp := *scene
		cp.Description = fmt.Sprintf("The atmosphere of %s: light, weather and setting, with the characters present but at rest",
			firstNonEmpty(scene.Location, setting, "the scene"))
		cp.CharacterActions = nil
		cp.Mood = "quiet"
		return &cp
	default:
		safe := &outline.Scene{
			Location:    firstNonEmpty(setting, scene.Location, "a gentle storybook setting"),
			Description: fmt.Sprintf("A calm, atmospheric illustration for %q: the setting itself, soft light, no action", chapterTitle),
			Background:  scene.Background,
			Mood:        "calm",
			CameraAngle: "wide",
		}
		return safe
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
