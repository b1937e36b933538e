package main

import (
	"context"
	"fmt"
	"strings"

	api "inboxpilot-backend/cmd/api"
	accountRepo "inboxpilot-backend/internal/account/repository"
	accountUsecase "inboxpilot-backend/internal/account/usecase"
	authRepo "inboxpilot-backend/internal/auth/repository"
	authUsecase "inboxpilot-backend/internal/auth/usecase"
	chatRepo "inboxpilot-backend/internal/chat/repository"
	chatUsecase "inboxpilot-backend/internal/chat/usecase"
	emailRepo "inboxpilot-backend/internal/email/repository"
	emailUsecase "inboxpilot-backend/internal/email/usecase"
	"inboxpilot-backend/internal/notification"
	"inboxpilot-backend/pkg/ai"
	"inboxpilot-backend/pkg/aurinko"
	"inboxpilot-backend/pkg/chroma"
	"inboxpilot-backend/pkg/config"
	"inboxpilot-backend/pkg/database"
	"inboxpilot-backend/pkg/utils/crypto"

	"github.com/rs/zerolog/log"
)

type app struct {
	handler    *api.Handler
	dispatcher *notification.SyncDispatcher
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	a := &app{}

	if cfg.EncryptionKey == "" {
		log.Warn().Msg("ENCRYPTION_KEY not set, account tokens are stored in plain text")
	}
	sealer := crypto.NewSealer(cfg.EncryptionKey)

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	accountRepository := accountRepo.NewAccountRepository(db, sealer)
	threadRepository := emailRepo.NewThreadRepository(db)
	interactionRepository := chatRepo.NewInteractionRepository(db)

	aurinkoClient := aurinko.NewClient(aurinko.Config{
		ClientID:     cfg.AurinkoClientID,
		ClientSecret: cfg.AurinkoClientSecret,
		APIURL:       cfg.AurinkoAPIURL,
		ReturnURL:    cfg.CallbackURL(),
		Timeout:      cfg.HTTPTimeout,
	})
	if !aurinkoClient.IsConfigured() {
		log.Warn().Msg("AURINKO_CLIENT_ID/AURINKO_CLIENT_SECRET not set, account linking disabled")
	}

	publisher, err := newSyncPublisher(ctx, cfg, a)
	if err != nil {
		return nil, err
	}
	a.dispatcher = notification.NewSyncDispatcher(publisher, cfg.SyncWorkers, 100, cfg.HTTPTimeout)
	a.dispatcher.Start()

	streamer, err := ai.NewChatStreamer(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	log.Info().Str("provider", cfg.AIProvider).Msg("AI provider initialized")

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepository, cfg)
	guard := accountUsecase.NewGuard(accountRepository)
	accountUc := accountUsecase.NewAccountUsecase(accountRepository, authUc, guard, aurinkoClient, a.dispatcher)
	threadUc := emailUsecase.NewThreadUsecase(threadRepository, guard)
	quota := chatUsecase.NewQuotaTracker(interactionRepository, config.FreeCreditsPerDay)
	chatUc := chatUsecase.NewChatUsecase(guard, authUc, quota, newSearcher(ctx, cfg, a), streamer, cfg.ChatModel)
	composeUc := chatUsecase.NewComposeUsecase(streamer, cfg.ComposeModel)

	a.handler = api.NewHandler(cfg.CORSAllowedOrigins, authUc, accountUc, threadUc, chatUc, composeUc)
	return a, nil
}

// newSyncPublisher prefers Pub/Sub when a project and topic are configured.
func newSyncPublisher(ctx context.Context, cfg *config.Config, a *app) (notification.Publisher, error) {
	if cfg.GoogleProjectID == "" || cfg.SyncPubSubTopic == "" {
		log.Info().Str("url", cfg.SyncNotifyURL).Msg("initial sync requests go over HTTP")
		return notification.NewHTTPPublisher(cfg.SyncNotifyURL, cfg.HTTPTimeout), nil
	}

	// Extract short topic name from full resource name if necessary
	topicName := cfg.SyncPubSubTopic
	if parts := strings.Split(topicName, "/"); len(parts) > 1 {
		topicName = parts[len(parts)-1]
	}

	publisher, err := notification.NewPubSubPublisher(ctx, cfg.GoogleProjectID, topicName, cfg.GoogleCredentials)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, publisher.Close)
	log.Info().Str("topic", topicName).Msg("initial sync requests go over Pub/Sub")
	return publisher, nil
}

// newSearcher falls back to an empty context when no vector index is reachable.
func newSearcher(ctx context.Context, cfg *config.Config, a *app) chatUsecase.Searcher {
	if cfg.ChromaURL == "" && cfg.ChromaAPIKey == "" {
		log.Warn().Msg("CHROMA_URL/CHROMA_API_KEY not set, chat answers get no mail context")
		return chatUsecase.NoopSearcher{}
	}

	client, err := chroma.NewChromaClient(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Chroma client, chat answers get no mail context")
		return chatUsecase.NoopSearcher{}
	}
	a.closers = append(a.closers, client.Close)
	return client
}

func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("failed to close resource")
		}
	}
}
