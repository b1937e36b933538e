package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	accountDelivery "inboxpilot-backend/internal/account/delivery"
	accountUsecase "inboxpilot-backend/internal/account/usecase"
	authUsecase "inboxpilot-backend/internal/auth/usecase"
	chatDelivery "inboxpilot-backend/internal/chat/delivery"
	chatUsecase "inboxpilot-backend/internal/chat/usecase"
	emailDelivery "inboxpilot-backend/internal/email/delivery"
	emailUsecase "inboxpilot-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	authUsecase    authUsecase.AuthUsecase
	handlers       Handlers
	allowedOrigins map[string]bool
}

func NewHandler(
	allowedOrigins []string,
	authUc authUsecase.AuthUsecase,
	accountUc accountUsecase.AccountUsecase,
	threadUc emailUsecase.ThreadUsecase,
	chatUc chatUsecase.ChatUsecase,
	composeUc chatUsecase.ComposeUsecase,
) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return &Handler{
		authUsecase:    authUc,
		allowedOrigins: origins,
		handlers: Handlers{
			Account: accountDelivery.NewAccountHandler(accountUc),
			Email:   emailDelivery.NewEmailHandler(threadUc),
			Chat:    chatDelivery.NewChatHandler(chatUc),
			Compose: chatDelivery.NewComposeHandler(composeUc),
		},
	}
}

// Router builds the engine with middleware and every route attached.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), h.cors())

	SetupRoutes(r, h.authUsecase, h.handlers)
	return r
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (h *Handler) Start(ctx context.Context, addr string) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info().Msg("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// cors only answers for allow-listed origins, since credentials are allowed.
func (h *Handler) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && h.allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requestLogger tags each request with an id and logs it once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
