package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/vampirenirmal/bookforge/internal/core"
)

func float32Ptr(f float32) *float32 {
	return &f
}

// genaiCaller owns one SDK client per credential, built lazily. Clients
// are cheap but carry connection state worth reusing across calls.
type genaiCaller struct {
	keys    []string
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[int]*genai.Client
}

func newGenaiCaller(keys []string, logger *slog.Logger) *genaiCaller {
	return &genaiCaller{
		keys:    keys,
		logger:  logger.With("component", "genai_caller"),
		clients: make(map[int]*genai.Client),
	}
}

func (c *genaiCaller) clientFor(ctx context.Context, keyIndex int) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[keyIndex]; ok {
		return client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: c.keys[keyIndex]})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	c.clients[keyIndex] = client
	return client, nil
}

func (c *genaiCaller) call(ctx context.Context, keyIndex int, model string, req Request) (string, error) {
	client, err := c.clientFor(ctx, keyIndex)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(req.Config.Temperature),
		TopP:            float32Ptr(req.Config.TopP),
		MaxOutputTokens: req.Config.MaxOutputTokens,
		SafetySettings:  safetySettings(req.Safety),
	}
	if req.Role == RoleImage {
		cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}

	return extractResponse(resp)
}

// safetySettings maps the engine's coarse level onto per-category
// thresholds. Mature-rated prose runs permissive; children's content
// runs restrictive.
func safetySettings(level SafetyLevel) []*genai.SafetySetting {
	threshold := genai.HarmBlockThresholdBlockMediumAndAbove
	switch level {
	case SafetyPermissive:
		threshold = genai.HarmBlockThresholdBlockOnlyHigh
	case SafetyRestrictive:
		threshold = genai.HarmBlockThresholdBlockLowAndAbove
	}

	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  cat,
			Threshold: threshold,
		})
	}
	return settings
}

// extractResponse pulls text (or base64 image data for the image role)
// out of the candidate parts, surfacing safety blocks as a distinct
// error the gateway will not rotate on.
func extractResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", core.ErrSafetyBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent:
		return "", fmt.Errorf("%w: candidate finished with %s", core.ErrSafetyBlocked, cand.FinishReason)
	}

	if cand.Content == nil {
		return "", fmt.Errorf("empty candidate content")
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("no text in response")
	}
	return text.String(), nil
}
