package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	authdomain "inboxpilot-backend/internal/auth/domain"
	authRepo "inboxpilot-backend/internal/auth/repository"
	authUsecase "inboxpilot-backend/internal/auth/usecase"
	"inboxpilot-backend/pkg/config"
	"inboxpilot-backend/pkg/database"
	"inboxpilot-backend/pkg/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	grantStatus string
	grantFor    time.Duration

	tokenEmail string
	tokenTTL   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "inboxpilot",
	Short: "InboxPilot mail assistant backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(cfg.LogLevel, cfg.PrettyLogs)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.handler.Start(ctx, ":"+cfg.Port)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info().Msg("database migrated")
		return nil
	},
}

var grantSubscriptionCmd = &cobra.Command{
	Use:   "grant-subscription <user_id>",
	Short: "Mark a user as subscribed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			return err
		}
		authUc := authUsecase.NewAuthUsecase(authRepo.NewUserRepository(db), cfg)
		until := time.Now().Add(grantFor)
		if err := authUc.GrantSubscription(cmd.Context(), args[0], grantStatus, until); err != nil {
			return err
		}
		log.Info().Str("user_id", args[0]).Str("status", grantStatus).Time("until", until).Msg("subscription saved")
		return nil
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token <user_id>",
	Short: "Print an identity token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		authUc := authUsecase.NewAuthUsecase(nil, cfg)
		token, err := authUc.IssueToken(authdomain.Identity{UserID: args[0], Email: tokenEmail}, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	grantSubscriptionCmd.Flags().StringVar(&grantStatus, "status", "active", "subscription status")
	grantSubscriptionCmd.Flags().DurationVar(&grantFor, "for", 30*24*time.Hour, "how long the subscription lasts")

	issueTokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	issueTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(serveCmd, migrateCmd, grantSubscriptionCmd, issueTokenCmd)
}
