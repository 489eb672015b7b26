// Package proxy implements the gRPC server handler for inference requests.
package proxy

import (
	"context"
	"fmt"
	"log"
	"time"

	pb "github.com/abdhe/semantic-llm-cache/proto"
	"github.com/abdhe/semantic-llm-cache/pkg/cache"
	"github.com/abdhe/semantic-llm-cache/pkg/metrics"
	"github.com/abdhe/semantic-llm-cache/pkg/provider"
	"github.com/abdhe/semantic-llm-cache/pkg/resilience"
)

// Handler implements the gRPC InferenceServiceServer. A semantic cache sits
// in front of every unary and streaming call: the cache decides hit or
// miss, and only a miss reaches the key pool / circuit breaker / retry /
// provider chain below it.
type Handler struct {
	pb.UnimplementedInferenceServiceServer

	providers       map[string]provider.Provider // model-prefix → provider
	keyPools        map[string]*resilience.KeyPool
	circuitBreakers map[string]*resilience.CircuitBreaker
	cache           *cache.Cache
	retryCfg        resilience.RetryConfig
	requestTimeout  time.Duration
	pricing         map[string]float64 // provider name → cost per 1K total tokens
}

// Config holds the handler configuration.
type Config struct {
	Providers       map[string]provider.Provider
	KeyPools        map[string]*resilience.KeyPool
	CircuitBreakers map[string]*resilience.CircuitBreaker
	Cache           *cache.Cache
	RetryConfig     resilience.RetryConfig
	RequestTimeout  time.Duration
	// Pricing maps a provider name to its cost per 1,000 total tokens; a
	// missing entry prices that provider's responses at zero, which is a
	// valid (if uninteresting) saved_cost contribution.
	Pricing map[string]float64
}

// NewHandler creates a new proxy handler.
func NewHandler(cfg Config) *Handler {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Handler{
		providers:       cfg.Providers,
		keyPools:        cfg.KeyPools,
		circuitBreakers: cfg.CircuitBreakers,
		cache:           cfg.Cache,
		retryCfg:        cfg.RetryConfig,
		requestTimeout:  cfg.RequestTimeout,
		pricing:         cfg.Pricing,
	}
}

// Infer handles a unary inference request.
func (h *Handler) Infer(ctx context.Context, req *pb.InferenceRequest) (*pb.InferenceResponse, error) {
	start := time.Now()
	metrics.ActiveRequests.Inc()
	defer metrics.ActiveRequests.Dec()

	ctx, cancel := context.WithTimeout(ctx, h.requestTimeout)
	defer cancel()

	providerName := resolveProvider(req.Model)

	call := func(ctx context.Context, prompt string) (cache.ModelResult, error) {
		resp, err := h.callProvider(ctx, providerName, req)
		if err != nil {
			return cache.ModelResult{}, err
		}
		return cache.ModelResult{
			Response:      resp.Text,
			ModelUsed:     providerName,
			Cost:          resp.Cost,
			InputTokens:   int(resp.PromptTokens),
			OutputTokens:  int(resp.OutputTokens),
			SelectedModel: req.Model,
		}, nil
	}

	var result cache.ModelResult
	var err error
	if h.cache != nil {
		result, err = h.cache.Wrap(call)(ctx, req.Prompt)
		metrics.RecordCacheLookup(result.CacheStatus == cache.StatusHit)
		snap := h.cache.Stats()
		metrics.RecordCacheSnapshot(h.cache.Size(), snap.SavedCost)
	} else {
		result, err = call(ctx, req.Prompt)
		if err == nil {
			result.CacheStatus = cache.StatusMiss
		}
	}

	if err != nil {
		metrics.RequestsTotal.WithLabelValues("error").Inc()
		latency := time.Since(start)
		metrics.RequestLatency.WithLabelValues(providerName, req.Model, "error").Observe(latency.Seconds())
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	latency := time.Since(start)
	statusLabel := "miss"
	switch result.CacheStatus {
	case cache.StatusHit:
		statusLabel = "hit"
		metrics.RequestsTotal.WithLabelValues("cache_hit").Inc()
	default:
		metrics.TokenUsageTotal.WithLabelValues(providerName, req.Model, "input").Add(float64(result.InputTokens))
		metrics.TokenUsageTotal.WithLabelValues(providerName, req.Model, "output").Add(float64(result.OutputTokens))
		metrics.RequestsTotal.WithLabelValues("success").Inc()
	}
	metrics.RequestLatency.WithLabelValues(providerName, req.Model, statusLabel).Observe(latency.Seconds())

	return &pb.InferenceResponse{
		Text:         result.Response,
		PromptTokens: int32(result.InputTokens),
		OutputTokens: int32(result.OutputTokens),
		CacheHit:     result.CacheStatus == cache.StatusHit,
		LatencyMs:    float64(latency.Milliseconds()),
		CacheStatus:  string(result.CacheStatus),
		Similarity:   result.Similarity,
	}, nil
}

// callProvider resolves the provider and key pool for providerName and
// executes req through the circuit breaker + retry chain.
func (h *Handler) callProvider(ctx context.Context, providerName string, req *pb.InferenceRequest) (provider.Response, error) {
	p, ok := h.providers[providerName]
	if !ok {
		return provider.Response{}, fmt.Errorf("unknown provider for model %q", req.Model)
	}

	kp, ok := h.keyPools[providerName]
	if !ok {
		return provider.Response{}, fmt.Errorf("no key pool for provider %q", providerName)
	}

	apiKey, err := kp.Next()
	if err != nil {
		return provider.Response{}, fmt.Errorf("key pool: %w", err)
	}

	provReq := provider.Request{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		APIKey:      apiKey,
	}

	var resp provider.Response
	cb := h.circuitBreakers[providerName]
	if cb == nil {
		err = resilience.Retry(ctx, h.retryCfg, func(ctx context.Context) error {
			var retryErr error
			resp, retryErr = p.Infer(ctx, provReq)
			return retryErr
		})
	} else {
		err = cb.Execute(func() error {
			return resilience.Retry(ctx, h.retryCfg, func(ctx context.Context) error {
				var retryErr error
				resp, retryErr = p.Infer(ctx, provReq)
				return retryErr
			})
		})
		metrics.CircuitBreakerState.WithLabelValues(providerName).Set(float64(cb.State()))
	}

	if err != nil {
		if resilience.IsServerError(err) {
			kp.MarkRateLimited(apiKey, time.Now().Add(60*time.Second))
		}
		return provider.Response{}, err
	}

	resp.Cost = h.cost(providerName, resp.PromptTokens, resp.OutputTokens)
	return resp, nil
}

func (h *Handler) cost(providerName string, promptTokens, outputTokens int32) float64 {
	rate, ok := h.pricing[providerName]
	if !ok {
		return 0
	}
	return rate * float64(promptTokens+outputTokens) / 1000.0
}

// InferStream handles a server-side streaming inference request. Streaming
// responses can still be served from the cache: a hit is delivered as a
// single terminal chunk instead of a token-by-token stream.
func (h *Handler) InferStream(req *pb.InferenceRequest, stream pb.InferenceService_InferStreamServer) error {
	start := time.Now()
	metrics.ActiveRequests.Inc()
	defer metrics.ActiveRequests.Dec()

	ctx := stream.Context()
	ctx, cancel := context.WithTimeout(ctx, h.requestTimeout)
	defer cancel()

	providerName := resolveProvider(req.Model)

	if h.cache != nil {
		lookup, err := h.cache.Lookup(ctx, req.Prompt)
		if err != nil {
			log.Printf("[proxy] cache lookup error: %v", err)
		}
		metrics.RecordCacheLookup(lookup.Hit)

		if lookup.Hit {
			metrics.RequestsTotal.WithLabelValues("cache_hit").Inc()
			latency := time.Since(start)
			metrics.RequestLatency.WithLabelValues(providerName, req.Model, "hit").Observe(latency.Seconds())
			return stream.Send(&pb.StreamChunk{
				Text: lookup.Entry.Response,
				Done: true,
			})
		}
	}

	p, ok := h.providers[providerName]
	if !ok {
		return fmt.Errorf("unknown provider for model %q", req.Model)
	}
	kp, ok := h.keyPools[providerName]
	if !ok {
		return fmt.Errorf("no key pool for provider %q", providerName)
	}
	apiKey, err := kp.Next()
	if err != nil {
		return fmt.Errorf("key pool: %w", err)
	}

	provReq := provider.Request{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		APIKey:      apiKey,
	}

	chunks, err := p.InferStream(ctx, provReq)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("stream inference failed: %w", err)
	}

	var fullText string
	var promptTokens, outputTokens int32

	for chunk := range chunks {
		if chunk.Err != nil {
			return fmt.Errorf("stream chunk error: %w", chunk.Err)
		}

		fullText += chunk.Text
		if chunk.PromptTokens > 0 {
			promptTokens = chunk.PromptTokens
		}
		if chunk.OutputTokens > 0 {
			outputTokens = chunk.OutputTokens
		}

		if err := stream.Send(&pb.StreamChunk{
			Text:         chunk.Text,
			Done:         chunk.Done,
			PromptTokens: chunk.PromptTokens,
			OutputTokens: chunk.OutputTokens,
		}); err != nil {
			return fmt.Errorf("stream send: %w", err)
		}
	}

	latency := time.Since(start)
	metrics.RequestLatency.WithLabelValues(providerName, req.Model, "miss").Observe(latency.Seconds())
	metrics.TokenUsageTotal.WithLabelValues(providerName, req.Model, "input").Add(float64(promptTokens))
	metrics.TokenUsageTotal.WithLabelValues(providerName, req.Model, "output").Add(float64(outputTokens))
	metrics.RequestsTotal.WithLabelValues("success").Inc()

	if h.cache != nil && fullText != "" {
		cost := h.cost(providerName, promptTokens, outputTokens)
		go func() {
			if _, err := h.cache.Add(context.Background(), req.Prompt, fullText, map[string]string{
				"cost": fmt.Sprintf("%v", cost),
			}); err != nil {
				log.Printf("[proxy] cache add failed: %v", err)
			}
		}()
	}

	return nil
}

// resolveProvider maps a model name to a provider name.
func resolveProvider(model string) string {
	switch {
	case len(model) >= 3 && model[:3] == "gpt":
		return "openai"
	case len(model) >= 6 && model[:6] == "gemini":
		return "gemini"
	case len(model) >= 7 && model[:7] == "claude-":
		return "anthropic"
	default:
		return "openai" // default fallback
	}
}
