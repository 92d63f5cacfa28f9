package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rocketscienceinc/tetris-backend/internal/bot"
	"github.com/rocketscienceinc/tetris-backend/internal/config"
	"github.com/rocketscienceinc/tetris-backend/internal/replication"
	"github.com/rocketscienceinc/tetris-backend/transport/websocket"
)

// main - connects a bot player to a relay and plays until interrupted.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	conf := config.MustLoad(filepath.Join(baseDir, "./config.yml"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err = run(logger, conf); err != nil {
		panic(fmt.Errorf("bot run failed: %w", err))
	}
}

func run(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "bot-app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules, err := conf.Rules.GameRules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	client, err := websocket.Dial(ctx, conf.Bot.URL, conf.Bot.Name, conf.Bot.Code)
	if err != nil {
		return err
	}

	defer func() {
		if err = client.Close(); err != nil {
			log.Error("failed to close connection", "error", err)
		}
	}()

	log.Info("connected to relay", "url", conf.Bot.URL, "name", conf.Bot.Name)

	session := replication.NewSession(logger, client, conf.Preferences.SchedulerPreferences())
	player := bot.NewPlayer(logger, bot.Config{
		Rules:      rules,
		ThinkTicks: conf.Bot.ThinkTicks,
		AutoStart:  conf.Bot.AutoStart,
	})

	err = replication.RunDriven(ctx, session, client.Messages(), player)
	if errors.Is(err, replication.ErrDisconnected) && client.Err() != nil {
		return fmt.Errorf("%w: %w", err, client.Err())
	}

	return err
}
