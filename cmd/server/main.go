package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"graphmem/internal/embedding"
	"graphmem/internal/graph"
	"graphmem/internal/llm"
	"graphmem/internal/memory"
	"graphmem/pkg/config"
	"graphmem/pkg/logger"
)

// memoryService is the surface the HTTP handlers need from the memory layer
type memoryService interface {
	Add(ctx context.Context, data string, filters memory.Filters) (int, error)
	Search(ctx context.Context, query string, filters memory.Filters) ([]memory.SearchResult, error)
	GetAll(ctx context.Context, filters memory.Filters) ([]graph.Triple, error)
	DeleteAll(ctx context.Context, filters memory.Filters) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph memory server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies
	store := graph.NewStore(driver)
	llmClient := llm.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModel)
	embedder := embedding.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)

	svc := memory.New(store, llmClient, embedder, memory.Options{
		Dialect:      llm.DialectForProvider(cfg.LLMProvider),
		Threshold:    cfg.SimilarityThreshold,
		CustomPrompt: cfg.CustomPrompt,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(svc, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", zap.Error(err))
	}

	log.Info("Server exited")
}

func newRouter(svc memoryService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Extract facts from text and merge them into the user's graph
		api.POST("/memories", func(c *gin.Context) {
			var req struct {
				Data   string `json:"data" binding:"required"`
				UserID string `json:"user_id" binding:"required"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			added, err := svc.Add(c.Request.Context(), req.Data, memory.Filters{UserID: req.UserID})
			if err != nil {
				log.Error("Failed to add memories", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add memories"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"added": added})
		})

		// Search the user's graph, reranked against the query
		api.POST("/memories/search", func(c *gin.Context) {
			var req struct {
				Query  string `json:"query" binding:"required"`
				UserID string `json:"user_id" binding:"required"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			results, err := svc.Search(c.Request.Context(), req.Query, memory.Filters{UserID: req.UserID})
			if err != nil {
				log.Error("Failed to search memories", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search memories"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"results": results})
		})

		// List every relationship in the user's graph
		api.GET("/memories", func(c *gin.Context) {
			userID := c.Query("user_id")
			if userID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
				return
			}

			triples, err := svc.GetAll(c.Request.Context(), memory.Filters{UserID: userID})
			if err != nil {
				log.Error("Failed to list memories", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list memories"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"memories": triples})
		})

		// Drop the user's entire graph
		api.DELETE("/memories", func(c *gin.Context) {
			userID := c.Query("user_id")
			if userID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
				return
			}

			if err := svc.DeleteAll(c.Request.Context(), memory.Filters{UserID: userID}); err != nil {
				log.Error("Failed to delete memories", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete memories"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
		})
	}

	return router
}

const requestIDHeader = "X-Request-ID"

// requestID attaches a request id to every request, generating one when the
// client did not send its own
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
