package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibehub/backend/internal/auth"
	"github.com/vibehub/backend/internal/cache"
	"github.com/vibehub/backend/internal/config"
	"github.com/vibehub/backend/internal/handlers"
	"github.com/vibehub/backend/internal/observability"
	"github.com/vibehub/backend/internal/services"
	"github.com/vibehub/backend/internal/store"
	"github.com/vibehub/backend/internal/store/memory"
	"github.com/vibehub/backend/internal/store/mongostore"
	"github.com/vibehub/backend/internal/supabase"
	"github.com/vibehub/backend/internal/websocket"
)

type stores struct {
	conversations store.ConversationStore
	stories       store.StoryStore
	directory     store.Directory
	close         func(context.Context) error

	// ping is nil for the memory backend
	ping handlers.Pinger
}

func main() {
	// Load configuration from environment
	cfg := config.Load()
	observability.SetLevel(cfg.LogLevel)
	log := observability.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer st.close(context.Background())

	// Redis carries verification codes and cross-instance fan-out when set
	var (
		codes  cache.Cache      = cache.NewMemoryCache()
		broker websocket.Broker = websocket.NewLocalBroker()
	)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		codes = cache.NewRedisCache(client)
		broker = websocket.NewRedisBroker(client)
	}
	defer closeCache(codes)

	checks := map[string]handlers.Pinger{"cache": codes}
	if st.ping != nil {
		checks["store"] = st.ping
	}

	// Initialize services
	conversationService := services.NewConversationService(st.conversations, st.directory)
	messageService := services.NewMessageService(st.conversations, st.directory, conversationService)
	storyService := services.NewStoryService(st.stories, st.directory)
	mediaService := services.NewMediaService(supabase.NewClient(cfg))
	verificationService := services.NewVerificationService(codes, services.LogMailer{}, cfg.CodeTTL)
	cleanupService := services.NewCleanupService(st.stories, cfg.StorySweepInterval)

	// Initialize WebSocket hub and start it
	hub := websocket.NewHub(broker, messageService, conversationService)
	messageService.SetNotifier(hub)
	if err := hub.Listen(ctx); err != nil {
		log.Error("failed to subscribe to realtime broker", "error", err)
		os.Exit(1)
	}
	go hub.Run()
	defer hub.Stop()

	// Start background story sweeper
	go cleanupService.Start()
	defer cleanupService.Stop()

	identity := auth.NewJWTIdentity(cfg.JWTSecret)
	router := handlers.NewRouter(handlers.Routes{
		CorsOrigins:    cfg.CorsOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Identity:       identity,
		Health:         handlers.NewHealthHandler(checks),
		Conversations:  handlers.NewConversationHandler(conversationService),
		Messages:       handlers.NewMessageHandler(messageService),
		Stories:        handlers.NewStoryHandler(storyService, mediaService),
		Media:          handlers.NewMediaHandler(mediaService),
		Verification:   handlers.NewVerificationHandler(verificationService),
		WebSocket:      websocket.NewHandler(hub, identity, cfg.WSAllowAnonymous).ServeWS,
	})
	log.Info("CORS allowed origins", "origins", cfg.CorsOrigins)

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("VibeHub backend starting", "addr", srv.Addr, "storage", cfg.StorageBackend, "redis", cfg.RedisURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StorageBackend == config.BackendMongo {
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		m, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &stores{conversations: m, stories: m, directory: m, close: m.Close, ping: m}, nil
	}

	log := observability.Logger()
	log.Warn("using in-memory storage, data is lost on restart")

	directory := memory.NewDirectory()
	if cfg.DirectorySeed != "" {
		seed, err := directory.LoadFile(cfg.DirectorySeed)
		if err != nil {
			return nil, err
		}
		log.Info("directory seeded", "path", cfg.DirectorySeed, "users", len(seed.Users), "posts", len(seed.Posts))
	}

	return &stores{
		conversations: memory.NewConversationStore(),
		stories:       memory.NewStoryStore(),
		directory:     directory,
		close:         func(context.Context) error { return nil },
	}, nil
}

func closeCache(c cache.Cache) {
	if err := c.Close(); err != nil {
		observability.Logger().Warn("failed to close cache", "error", err)
	}
}
