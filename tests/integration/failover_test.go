package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lernwerk/resilient-cache/pkg/cache"
	"github.com/lernwerk/resilient-cache/pkg/connection"
	"github.com/lernwerk/resilient-cache/pkg/localstore"
	"github.com/lernwerk/resilient-cache/pkg/otp"
	"github.com/lernwerk/resilient-cache/pkg/ratelimit"
)

// setupRedis starts a Redis container for integration testing.
func setupRedis(t *testing.T) (addr string, container testcontainers.Container) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	// testcontainers panics (rather than returning an error) when no Docker
	// endpoint can be found; fold that into the error path so the skip below
	// still fires on Docker-less machines.
	container, err := func() (c testcontainers.Container, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()
	if err != nil {
		t.Skipf("Docker not available for integration testing: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return host + ":" + port.Port(), container
}

func waitReady(t *testing.T, m *connection.Manager, want bool) {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		if m.IsReady() == want {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("manager readiness never became %v (state %s)", want, m.State())
}

func TestFailover_RemoteThenLocal(t *testing.T) {
	addr, container := setupRedis(t)
	ctx := context.Background()

	cfg := connection.DefaultConfig(addr)
	cfg.PingInterval = 200 * time.Millisecond
	cfg.ProbeTimeout = time.Second

	manager := connection.New(cfg)
	manager.Start(ctx)
	defer manager.Stop()

	facade := cache.NewFacade(
		cache.NewRedisStore(manager.Client()),
		localstore.New(),
		manager,
	)

	waitReady(t, manager, true)

	// While ready, writes land in Redis.
	facade.SetWithExpiry(ctx, "student_stats:42", time.Minute, `{"avg":87}`)
	val, ok := facade.Get(ctx, "student_stats:42")
	require.True(t, ok)
	assert.Equal(t, `{"avg":87}`, val)

	direct := redis.NewClient(&redis.Options{Addr: addr})
	defer direct.Close()
	stored, err := direct.Get(ctx, "student_stats:42").Result()
	require.NoError(t, err)
	assert.Equal(t, `{"avg":87}`, stored)

	// Kill Redis: readiness drops, the facade keeps working unchanged.
	stopTimeout := 5 * time.Second
	require.NoError(t, container.Stop(ctx, &stopTimeout))
	waitReady(t, manager, false)

	facade.SetWithExpiry(ctx, "otp:a@x.com", time.Minute, "482913")
	val, ok = facade.Get(ctx, "otp:a@x.com")
	require.True(t, ok, "fallback store must serve the value")
	assert.Equal(t, "482913", val)
	assert.Equal(t, 1, facade.Delete(ctx, "otp:a@x.com"))
}

func TestFailover_PoliciesSurviveOutage(t *testing.T) {
	addr, container := setupRedis(t)
	ctx := context.Background()

	cfg := connection.DefaultConfig(addr)
	cfg.PingInterval = 200 * time.Millisecond
	cfg.ProbeTimeout = time.Second

	manager := connection.New(cfg)
	manager.Start(ctx)
	defer manager.Stop()

	facade := cache.NewFacade(
		cache.NewRedisStore(manager.Client()),
		localstore.New(),
		manager,
	)
	waitReady(t, manager, true)

	codes := otp.NewService(facade, otp.DefaultConfig())
	limiter := ratelimit.NewLimiter(facade, ratelimit.Policy{
		Name: "otp_limit", Limit: 3, Window: time.Minute,
	})

	// Policies behave identically before and after the outage.
	code, err := codes.Issue(ctx, "user@test.com")
	require.NoError(t, err)

	stopTimeout := 5 * time.Second
	require.NoError(t, container.Stop(ctx, &stopTimeout))
	waitReady(t, manager, false)

	// The code was written to Redis, which is gone - expired/unknown is
	// the correct degraded answer, not an error.
	assert.ErrorIs(t, codes.Verify(ctx, "user@test.com", code), otp.ErrCodeExpired)

	// Reissue lands in the local store and consumes normally.
	code, err = codes.Issue(ctx, "user@test.com")
	require.NoError(t, err)
	require.NoError(t, codes.Verify(ctx, "user@test.com", code))
	assert.ErrorIs(t, codes.Verify(ctx, "user@test.com", code), otp.ErrCodeExpired)

	// The limiter keeps counting locally.
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "user@test.com"))
	}
	assert.False(t, limiter.Allow(ctx, "user@test.com"))
}
