package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gmc/bootstrap/config"
	"github.com/gmc/bootstrap/probe"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "d", SSLMode: "disable",
		},
		Cache:   config.CacheConfig{Host: "localhost", Port: 6379},
		Network: "gmc_network",
		Probe: config.ProbeConfig{
			Timeout:        200 * time.Millisecond,
			StartupTimeout: 5 * time.Second,
		},
		Server: config.ServerConfig{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: time.Second,
		},
		Observability: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"},
	}
}

// flakyProber fails a fixed number of checks, then succeeds.
type flakyProber struct {
	failures int32
	calls    int32
}

func (f *flakyProber) Name() string { return "postgres" }
func (f *flakyProber) Addr() string { return "db:5432" }

func (f *flakyProber) Check(ctx context.Context) error {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= atomic.LoadInt32(&f.failures) {
		return errors.New("connection refused")
	}
	return nil
}

func TestNew_WiresProbers(t *testing.T) {
	a := New(testConfig(), zap.NewNop())

	require.Len(t, a.Probers, 2)
	assert.Equal(t, "postgres", a.Probers[0].Name())
	assert.Equal(t, "redis", a.Probers[1].Name())
	assert.NotEmpty(t, a.InstanceID)

	other := New(testConfig(), zap.NewNop())
	assert.NotEqual(t, a.InstanceID, other.InstanceID)
}

func TestWaitForDependencies_SucceedsImmediately(t *testing.T) {
	a := New(testConfig(), zap.NewNop())
	a.Probers = []probe.Prober{&flakyProber{failures: 0}}

	require.NoError(t, a.WaitForDependencies(context.Background()))
}

func TestWaitForDependencies_RecoversAfterRetries(t *testing.T) {
	a := New(testConfig(), zap.NewNop())
	flaky := &flakyProber{failures: 2}
	a.Probers = []probe.Prober{flaky}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, a.WaitForDependencies(ctx))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&flaky.calls), int32(3))
}

func TestWaitForDependencies_GivesUpOnTimeout(t *testing.T) {
	a := New(testConfig(), zap.NewNop())
	a.Probers = []probe.Prober{&flakyProber{failures: 1 << 30}}

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := a.WaitForDependencies(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, err.Error(), "postgres")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_GracefulShutdown(t *testing.T) {
	a := New(testConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	require.NoError(t, a.Run(ctx))
}

func TestClose(t *testing.T) {
	a := New(testConfig(), zap.NewNop())
	assert.NoError(t, a.Close())
}
