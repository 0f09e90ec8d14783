package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/dishcraft/dishcraft/internal/config"
	"github.com/dishcraft/dishcraft/internal/domain"
	"github.com/dishcraft/dishcraft/internal/httpserver"
	"github.com/dishcraft/dishcraft/internal/httpserver/middleware"
	"github.com/dishcraft/dishcraft/internal/llm"
	"github.com/dishcraft/dishcraft/internal/observability"
	redisstore "github.com/dishcraft/dishcraft/internal/store/redis"
	"github.com/dishcraft/dishcraft/internal/store/sqlite"
)

// systemMessage frames every model call; per-recipe constraints travel in the
// user message built by the modifier service.
const systemMessage = "You are a professional chef and nutritionist. You adapt recipes to dietary " +
	"requirements while keeping them practical to cook and pleasant to eat."

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *httpserver.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Stores
	if err := container.Provide(func(cfg *redisstore.Config) (*redis.Client, error) {
		return redisstore.NewRedisClient(context.Background(), *cfg)
	}); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}
	if err := container.Provide(func(client *redis.Client) domain.PreferencesStore {
		return redisstore.NewPreferencesStore(client)
	}); err != nil {
		log.Fatalf("Failed to provide preferences store: %v", err)
	}
	if err := container.Provide(func(cfg *sqlite.Config) (domain.AuditStore, error) {
		return sqlite.Open(context.Background(), *cfg)
	}); err != nil {
		log.Fatalf("Failed to provide audit store: %v", err)
	}

	// Model client
	if err := container.Provide(func(cfg *llm.Config) (domain.Completer, error) {
		client, err := llm.NewClient(*cfg)
		if err != nil {
			return nil, err
		}
		if err := client.SetSystemMessage(systemMessage); err != nil {
			return nil, err
		}
		return client, nil
	}); err != nil {
		log.Fatalf("Failed to provide model client: %v", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewModifierService); err != nil {
		log.Fatalf("Failed to provide modifier service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(httpserver.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
