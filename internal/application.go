package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/config"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/repository"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/disappearing-tictactoe/transport/rest"
	"github.com/rocketscienceinc/disappearing-tictactoe/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sessionRepo, closeStorage, err := newSessionRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeStorage(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	gameManager := usecase.NewGameManager(logger, sessionRepo)

	var metricsPath string
	if !conf.Metrics.Disabled {
		metricsPath = conf.Metrics.Path
	}

	group, groupCtx := errgroup.WithContext(ctx)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, gameManager, rest.Options{MetricsPath: metricsPath})
		if err := rest.Start(groupCtx, conf.HTTPPort, router); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func() error, error) {
	switch conf.Storage.Type {
	case config.StorageRedis:
		redisClient, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewSessionRepository(redisClient, conf.Redis.SessionTTL), redisClient.Close, nil
	default:
		return repository.NewMemorySessionRepository(), func() error { return nil }, nil
	}
}
