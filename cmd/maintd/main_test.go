package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-tracker-backend/config"
	"maintenance-tracker-backend/internal/db"
	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/store"
)

// A helper function to build the shared components over an in-memory database.
func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	s := store.NewGormStore(gormDB)
	return &app{
		cfg:    cfg,
		logger: zap.NewNop(),
		store:  s,
		svc:    maintenance.NewService(s, zap.NewNop()),
		close:  func() {},
	}
}

func waitReturns(t *testing.T, wait func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background work did not stop")
	}
}

func TestStartNotifications(t *testing.T) {
	t.Run("disabled without VAPID keys", func(t *testing.T) {
		a := newTestApp(t, &config.Config{})
		opts, wait := startNotifications(context.Background(), a)
		assert.Nil(t, opts)
		waitReturns(t, wait)
	})

	t.Run("stops sweeper and workers on cancel", func(t *testing.T) {
		cfg := &config.Config{
			Push:       config.PushConfig{PublicKey: "public", PrivateKey: "private", Subject: "mailto:ops@example.com", TTL: 60},
			Reminder:   config.ReminderConfig{Enabled: true, Interval: 10 * time.Millisecond, Renotify: time.Hour},
			WorkerPool: config.WorkerPoolConfig{Size: 2},
		}
		a := newTestApp(t, cfg)

		ctx, cancel := context.WithCancel(context.Background())
		opts, wait := startNotifications(ctx, a)
		require.NotNil(t, opts)
		assert.Equal(t, "public", opts.VAPIDPublicKey)

		time.Sleep(30 * time.Millisecond)
		cancel()
		waitReturns(t, wait)
	})
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "maint.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: sqlite\n  dsn: "+dbPath+"\n  log_level: silent\nlog:\n  level: error\n"), 0o600))

	for i := 0; i < 2; i++ {
		cmd := rootCmd()
		cmd.SetArgs([]string{"seed", "--config", cfgPath})
		require.NoError(t, cmd.Execute())
	}

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	gormDB, err := db.Init(&cfg.Database, zap.NewNop())
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	n, err := store.NewGormStore(gormDB).CountMachines(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
