package di

import (
	"fmt"

	"xenarc-chat-demo/backend/internal/llm"
	"xenarc-chat-demo/backend/internal/repository"
	"xenarc-chat-demo/backend/internal/service"
	"xenarc-chat-demo/backend/internal/store"
	"xenarc-chat-demo/backend/pkg/config"
	"xenarc-chat-demo/backend/pkg/jwt"
	"xenarc-chat-demo/backend/pkg/logger"
	"xenarc-chat-demo/backend/pkg/metrics"
)

// Container holds all the dependencies for the application. It is
// constructed once in main and passed by reference; there are no
// ambient domain singletons.
type Container struct {
	Logger      *logger.Logger
	Store       store.Store
	Sessions    *repository.SessionRepository
	LLMClient   llm.Client
	ChatService *service.ChatService
	UserService *service.UserService
	JWTService  *jwt.Service
	Metrics     *metrics.Metrics
}

// New wires the application from configuration.
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	st, err := newStore(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	sessions, err := repository.NewSessionRepository(st, log)
	if err != nil {
		return nil, fmt.Errorf("loading session state: %w", err)
	}

	client := newLLMClient(cfg, log)
	m := metrics.New()
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	generation := llm.Options{
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		TopP:         cfg.LLM.TopP,
		SystemPrompt: cfg.LLM.SystemPrompt,
	}

	return &Container{
		Logger:      log,
		Store:       st,
		Sessions:    sessions,
		LLMClient:   client,
		ChatService: service.NewChatService(sessions, client, generation, log, m),
		UserService: service.NewUserService(st, jwtService, log),
		JWTService:  jwtService,
		Metrics:     m,
	}, nil
}

func newStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return store.NewMemoryStore(log), nil
	case config.StoreBackendRedis:
		return store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPrefix, log)
	case config.StoreBackendFile:
		return store.NewFileStore(cfg.Store.FilePath, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newLLMClient(cfg *config.Config, log *logger.Logger) llm.Client {
	if cfg.LLM.Simulate || cfg.LLM.APIKey == "" {
		if cfg.LLM.APIKey == "" && !cfg.LLM.Simulate {
			log.Warn("no LLM API key configured, using the simulated client")
		}
		return llm.NewSimulatedClient(cfg.LLM.SimulatedLatency)
	}

	return llm.NewHTTPClient(llm.HTTPClientConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
}
