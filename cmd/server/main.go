package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/meetsignal/internal/app"
	"github.com/vovakirdan/meetsignal/internal/auth"
	"github.com/vovakirdan/meetsignal/internal/config"
	"github.com/vovakirdan/meetsignal/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string

	flagTokenUser string
	flagTokenName string
	flagTokenTTL  time.Duration
)

// rootCmd serves when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "meetsignal",
	Short: "WebRTC signaling and room membership server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token with the configured secret",
	Long: `Mint a development bearer token signed with jwt_secret.

Examples:
  meetsignal token --user u1 --name alice
  meetsignal token --config ./meetsignal.yaml --user u1 --ttl 1h`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.AuthEnabled() {
			return errors.New("jwt_secret is not configured")
		}
		token, err := auth.GenerateToken(&auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      flagTokenTTL,
		}, flagTokenUser, flagTokenName)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "HTTP listen address")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	tokenCmd.Flags().StringVar(&flagTokenUser, "user", "", "participant id (token subject)")
	tokenCmd.Flags().StringVar(&flagTokenName, "name", "", "display name")
	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, tokenCmd)
}

func loadConfig() (config.Config, error) {
	bootLogger := log.New("info", "console")
	cfg, path, err := config.Load(bootLogger, flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(config.Config{Addr: flagAddr, LogLevel: flagLogLevel})
	bootLogger.Debug().Str("path", path).Msg("config loaded")
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Bool("auth", cfg.AuthEnabled()).Int("room_capacity", cfg.RoomCapacity).Msg("starting meetsignal server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
