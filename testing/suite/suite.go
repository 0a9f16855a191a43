package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerTTL = 120
	startTimeout = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// SessionKeyPattern matches every key the session repository writes.
const SessionKeyPattern = "session:*"

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

// New starts a throwaway Redis container for session storage tests. The test is skipped in
// -short mode or when no docker daemon is reachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis suite in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	st := &Suite{
		T:      t,
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	st.Storage = st.startRedis(ctx)

	if err := st.FlushSessions(ctx); err != nil {
		t.Fatalf("could not flush sessions: %v", err)
	}

	return ctx, st
}

func (that *Suite) startRedis(ctx context.Context) *redis.Client {
	pool, err := dockertest.NewPool("")
	if err != nil {
		that.Skipf("could not construct docker pool: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		that.Skipf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		that.Fatalf("could not start redis: %v", err)
	}

	// hard kill in case Purge is never reached
	_ = resource.Expire(containerTTL)

	pool.MaxWait = startTimeout

	var client *redis.Client
	if err = pool.Retry(func() error {
		client = redis.NewClient(&redis.Options{
			Addr: resource.GetHostPort(redisPort),
		})
		return client.Ping(ctx).Err()
	}); err != nil {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			that.Errorf("could not purge redis: %v", purgeErr)
		}

		that.Fatalf("could not connect to redis: %v", err)
	}

	that.Cleanup(func() {
		_ = client.Close()

		if err := pool.Purge(resource); err != nil {
			that.Errorf("could not purge redis: %v", err)
		}
	})

	return client
}

// SessionKeys lists the stored session keys.
func (that *Suite) SessionKeys(ctx context.Context) ([]string, error) {
	var keys []string

	iter := that.Storage.Scan(ctx, 0, SessionKeyPattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	return keys, iter.Err()
}

// FlushSessions removes every stored session key.
func (that *Suite) FlushSessions(ctx context.Context) error {
	keys, err := that.SessionKeys(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}

	return that.Storage.Del(ctx, keys...).Err()
}
