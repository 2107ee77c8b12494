package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vampirenirmal/bookforge/internal/config"
	"github.com/vampirenirmal/bookforge/internal/core"
)

// caller issues one raw call against one credential. Split out so the
// rotation logic is testable without the SDK.
type caller interface {
	call(ctx context.Context, keyIndex int, model string, req Request) (string, error)
}

// Gateway multiplexes one logical client over an ordered credential list.
// A current index and a sticky last-working index persist for the process
// lifetime; rotation happens on every failure except a safety block.
type Gateway struct {
	keys    []string
	caller  caller
	limiter *rate.Limiter
	logger  *slog.Logger

	safetyTimeout time.Duration
	maxCycles     int
	cycleDelay    time.Duration

	bindings map[Role]roleBinding

	mu          sync.Mutex
	current     int
	lastWorking int
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger.With("component", "provider_gateway")
	}
}

func WithSafetyTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.safetyTimeout = d
	}
}

func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(g *Gateway) {
		g.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// withCaller swaps the SDK caller; used by tests.
func withCaller(c caller) Option {
	return func(g *Gateway) {
		g.caller = c
	}
}

// NewGateway builds a gateway from config. The host runtime kills the
// process near 300s, so the default per-call cap stays well under that.
func NewGateway(cfg *config.Config, opts ...Option) (*Gateway, error) {
	if len(cfg.Provider.Keys) == 0 {
		return nil, core.ErrNoAPIKey
	}

	g := &Gateway{
		keys:          cfg.Provider.Keys,
		limiter:       rate.NewLimiter(rate.Limit(float64(cfg.Limits.RequestsPerMinute)/60.0), cfg.Limits.BurstSize),
		logger:        slog.Default().With("component", "provider_gateway"),
		safetyTimeout: time.Duration(cfg.Limits.SafetyTimeoutSeconds) * time.Second,
		maxCycles:     cfg.Limits.MaxKeyCycles,
		cycleDelay:    time.Duration(cfg.Limits.CycleDelaySeconds) * time.Second,
		bindings: map[Role]roleBinding{
			RolePro:       {model: cfg.Provider.ProModel, temperature: 0.95, topP: 0.95, maxTokens: 8192},
			RoleFlash:     {model: cfg.Provider.FlashModel, temperature: 0.3, topP: 0.9, maxTokens: 8192},
			RoleFlashLite: {model: cfg.Provider.FlashLiteModel, temperature: 0.3, topP: 0.9, maxTokens: 4096},
			RoleImage:     {model: cfg.Provider.ImageModel, temperature: 0.9, topP: 0.95, maxTokens: 8192},
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.caller == nil {
		g.caller = newGenaiCaller(cfg.Provider.Keys, g.logger)
	}

	g.logger.Debug("gateway initialized",
		"keys", len(g.keys),
		"safety_timeout", g.safetyTimeout,
		"max_cycles", g.maxCycles)

	return g, nil
}

// Generate runs one call with key rotation, no inter-cycle delay.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	return g.generate(ctx, req, 1, g.startIndex())
}

// GenerateWithRetry allows a second full cycle through the key list with
// a delay between cycles.
func (g *Gateway) GenerateWithRetry(ctx context.Context, req Request) (string, error) {
	return g.generate(ctx, req, g.maxCycles, g.startIndex())
}

// Review issues the call on a credential offset from the generation
// path. With a single configured key the two paths collapse.
func (g *Gateway) Review(ctx context.Context, req Request) (string, error) {
	start := g.startIndex()
	if len(g.keys) > 1 {
		start = (start + 1) % len(g.keys)
	}
	return g.generate(ctx, req, 1, start)
}

// LastWorkingKey exposes the sticky index for observability and tests.
func (g *Gateway) LastWorkingKey() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastWorking
}

func (g *Gateway) startIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastWorking
}

func (g *Gateway) markWorking(idx int) {
	g.mu.Lock()
	g.lastWorking = idx
	g.current = idx
	g.mu.Unlock()
}

func (g *Gateway) generate(ctx context.Context, req Request, cycles, start int) (string, error) {
	requestID := fmt.Sprintf("gen_%d", time.Now().UnixNano())
	startTime := time.Now()

	binding, ok := g.bindings[req.Role]
	if !ok {
		return "", fmt.Errorf("unknown model role %q", req.Role)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	type keyFailure struct {
		key  int
		kind core.FailureKind
	}
	var failures []keyFailure
	var lastErr error

	for cycle := 0; cycle < cycles; cycle++ {
		if cycle > 0 {
			g.logger.Warn("all keys failed, delaying before next cycle",
				"request_id", requestID,
				"cycle", cycle,
				"delay", g.cycleDelay)
			select {
			case <-time.After(g.cycleDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		for n := 0; n < len(g.keys); n++ {
			idx := (start + n) % len(g.keys)

			attemptStart := time.Now()
			callCtx, cancel := context.WithTimeout(ctx, g.safetyTimeout)
			response, err := g.caller.call(callCtx, idx, binding.model, g.withDefaults(req, binding))
			cancel()

			if err == nil {
				g.markWorking(idx)
				g.logger.Info("provider call succeeded",
					"request_id", requestID,
					"purpose", req.Purpose,
					"role", req.Role,
					"key", idx,
					"duration_ms", time.Since(attemptStart).Milliseconds(),
					"response_length", len(response),
					"total_duration_ms", time.Since(startTime).Milliseconds())
				return response, nil
			}

			lastErr = err
			kind := classify(callCtx, err)
			failures = append(failures, keyFailure{key: idx, kind: kind})

			g.logger.Warn("provider call failed",
				"request_id", requestID,
				"purpose", req.Purpose,
				"role", req.Role,
				"key", idx,
				"kind", string(kind),
				"duration_ms", time.Since(attemptStart).Milliseconds(),
				"error", err)

			// Safety blocks are not a key problem; rotating would waste
			// quota on the same refusal. The caller owns sanitization.
			if kind == core.FailureSafetyBlock {
				return "", &core.ProviderError{KeyIndex: idx, Kind: kind, Cause: fmt.Errorf("%w: %v", core.ErrSafetyBlocked, err)}
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}
	}

	summary := make([]any, 0, len(failures)*2)
	for _, f := range failures {
		summary = append(summary, fmt.Sprintf("key_%d", f.key), string(f.kind))
	}
	g.logger.Error("all keys exhausted",
		append([]any{"request_id", requestID, "purpose", req.Purpose, "cycles", cycles}, summary...)...)

	return "", fmt.Errorf("%w: %v", core.ErrAllKeysExhausted, lastErr)
}

func (g *Gateway) withDefaults(req Request, binding roleBinding) Request {
	if req.Config.Temperature == 0 {
		req.Config.Temperature = binding.temperature
	}
	if req.Config.TopP == 0 {
		req.Config.TopP = binding.topP
	}
	if req.Config.MaxOutputTokens == 0 {
		req.Config.MaxOutputTokens = binding.maxTokens
	}
	return req
}

// classify folds an SDK error into the rotation taxonomy. The local
// safety timeout presents as a context deadline on the call context.
func classify(callCtx context.Context, err error) core.FailureKind {
	switch {
	case core.IsSafetyBlocked(err):
		return core.FailureSafetyBlock
	case core.IsRateLimit(err):
		return core.FailureRateLimit
	case callCtx.Err() == context.DeadlineExceeded:
		return core.FailureSafetyTimeout
	case core.IsTimeout(err):
		return core.FailureTimeout
	default:
		return core.FailureOther
	}
}
