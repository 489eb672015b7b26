// Semantic LLM Cache Proxy — main entry point
//
// Environment variables are documented in pkg/config.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	pb "github.com/abdhe/semantic-llm-cache/proto"
	"github.com/abdhe/semantic-llm-cache/pkg/cache"
	"github.com/abdhe/semantic-llm-cache/pkg/config"
	"github.com/abdhe/semantic-llm-cache/pkg/provider"
	"github.com/abdhe/semantic-llm-cache/pkg/proxy"
	"github.com/abdhe/semantic-llm-cache/pkg/resilience"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Semantic LLM Cache Proxy...")

	cfg := config.FromEnv()

	// -------------------------------------------------------------------------
	// Initialize providers
	// -------------------------------------------------------------------------
	providers := map[string]provider.Provider{
		"openai": provider.NewOpenAIProvider(),
		"gemini": provider.NewGeminiProvider(),
	}

	// -------------------------------------------------------------------------
	// Initialize key pools
	// -------------------------------------------------------------------------
	keyPools := make(map[string]*resilience.KeyPool)
	if len(cfg.OpenAIKeys) > 0 {
		keyPools["openai"] = resilience.NewKeyPool(cfg.OpenAIKeys)
		log.Printf("OpenAI key pool: %d keys", len(cfg.OpenAIKeys))
	}
	if len(cfg.GeminiKeys) > 0 {
		keyPools["gemini"] = resilience.NewKeyPool(cfg.GeminiKeys)
		log.Printf("Gemini key pool: %d keys", len(cfg.GeminiKeys))
	}

	// -------------------------------------------------------------------------
	// Initialize circuit breakers
	// -------------------------------------------------------------------------
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.CBFailureThreshold,
		Cooldown:         cfg.CBCooldown,
	}
	circuitBreakers := map[string]*resilience.CircuitBreaker{
		"openai": resilience.NewCircuitBreaker(cbCfg),
		"gemini": resilience.NewCircuitBreaker(cbCfg),
	}

	// -------------------------------------------------------------------------
	// Initialize semantic cache
	// -------------------------------------------------------------------------
	var semanticCache *cache.Cache
	if cfg.CacheEnabled {
		var embedder cache.Embedder
		if cfg.EmbeddingAPIKey != "" {
			embedder = cache.NewHTTPEmbedder(cfg.EmbeddingAPIKey, cfg.EmbedderModel, cache.DefaultDim)
		} else {
			embedder = cache.NewHashEmbedder(cfg.EmbedderModel, cache.DefaultDim)
			log.Println("EMBEDDING_API_KEY not set — using local hash embedder")
		}

		var err error
		// Threshold/TTLSeconds are taken by address so an operator who
		// explicitly sets CACHE_TTL_SECONDS=0 or SIMILARITY_THRESHOLD=0
		// gets that literal value rather than the package defaults.
		semanticCache, err = cache.New(cache.Config{
			Dir:        cfg.CacheDir,
			Embedder:   embedder,
			Threshold:  &cfg.SimilarityThreshold,
			TTLSeconds: &cfg.CacheTTLSeconds,
			Enabled:    true,
		})
		if err != nil {
			log.Printf("WARNING: semantic cache init failed: %v (cache disabled)", err)
			semanticCache = nil
		} else {
			cache.SetDefault(semanticCache)
			log.Printf("Semantic cache enabled (threshold=%.2f, ttl=%ds, dir=%s)",
				cfg.SimilarityThreshold, cfg.CacheTTLSeconds, cfg.CacheDir)
		}
	} else {
		log.Println("Semantic cache disabled via CACHE_ENABLED=false")
	}

	// -------------------------------------------------------------------------
	// Initialize retry config
	// -------------------------------------------------------------------------
	retryCfg := resilience.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   30 * time.Second,
	}

	// -------------------------------------------------------------------------
	// Create gRPC handler
	// -------------------------------------------------------------------------
	handler := proxy.NewHandler(proxy.Config{
		Providers:       providers,
		KeyPools:        keyPools,
		CircuitBreakers: circuitBreakers,
		Cache:           semanticCache,
		RetryConfig:     retryCfg,
		RequestTimeout:  cfg.RequestTimeout,
		Pricing: map[string]float64{
			"openai": 0.002,
			"gemini": 0.0015,
		},
	})

	// -------------------------------------------------------------------------
	// Start gRPC server
	// -------------------------------------------------------------------------
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(4*1024*1024),  // 4MB
		grpc.MaxSendMsgSize(16*1024*1024), // 16MB
	)
	pb.RegisterInferenceServiceServer(grpcServer, handler)
	reflection.Register(grpcServer) // Enable gRPC reflection for grpcurl

	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("Failed to listen on gRPC port %s: %v", cfg.GRPCPort, err)
	}

	go func() {
		log.Printf("gRPC server listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(grpcLis); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start HTTP metrics + cache admin server
	// -------------------------------------------------------------------------
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	if semanticCache != nil {
		proxy.RegisterCacheAdminRoutes(metricsMux, semanticCache)
	}

	metricsServer := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      metricsMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Metrics server listening on :%s/metrics", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server error: %v", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Graceful shutdown
	// -------------------------------------------------------------------------
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}
	log.Println("Metrics server stopped")

	log.Println("Semantic LLM Cache Proxy shut down successfully")
}
