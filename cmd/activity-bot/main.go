package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/guild-genesis/herald/adapters/activity"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/internal/config"
	"github.com/guild-genesis/herald/service"
	transport "github.com/guild-genesis/herald/transport/http"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}

	repo := activity.NewPostgresRepository(pool)
	recorder := service.NewActivityRecorder(repo, cfg.GuildID, cfg.PointsPerMessage, cfg.MaxMessagesPerMinute, log)

	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// A handler panic is unrecoverable state; log it and begin shutdown
		// instead of crashing the gateway goroutine.
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("message handler panicked")
				stop()
			}
		}()
		_ = recorder.Record(ctx, core.InboundMessage{
			AuthorID:   m.Author.ID,
			AuthorName: m.Author.Username,
			GuildID:    m.GuildID,
			FromBot:    m.Author.Bot,
		})
	})

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open gateway connection")
	}
	defer session.Close()
	log.Info().Str("guild_id", cfg.GuildID).Msg("gateway connected")

	router := transport.SetupRouter(repo, cfg.AdminToken)
	server := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("admin server stopped")
			stop()
		}
	}()
	log.Info().Str("addr", cfg.AdminAddr).Msg("admin server listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("admin server shutdown failed")
	}
}
