package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/playerwall/internal/controller"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/repository/connection/inmemory"
	"github.com/sharetube/playerwall/internal/repository/mirror"
	mirrorRedis "github.com/sharetube/playerwall/internal/repository/mirror/redis"
	"github.com/sharetube/playerwall/internal/service/hosting"
	"github.com/sharetube/playerwall/internal/snapshot"
	"github.com/sharetube/playerwall/pkg/ctxlogger"
	"github.com/sharetube/playerwall/pkg/redisclient"
	"github.com/spf13/afero"
)

type AppConfig struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	LogLevel        string   `json:"log_level"`
	ScreenshotDir   string   `json:"screenshot_dir"`
	ScreenshotHosts []string `json:"screenshot_hosts"`
	RedisPort       int      `json:"redis_port"`
	RedisHost       string   `json:"redis_host"`
	RedisPassword   string   `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.ScreenshotDir == "" {
		return fmt.Errorf("screenshot dir must not be empty")
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.RedisHost != "" && (cfg.RedisPort < 1 || cfg.RedisPort > 65535) {
		return fmt.Errorf("redis port must be between 1 and 65535")
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return logLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return logLevel, nil
}

type iMirror interface {
	Publish(context.Context, *mirror.Event) error
}

// newMirror connects to redis when a redis host is configured. Without
// one, registry changes are not mirrored anywhere.
func newMirror(ctx context.Context, cfg *AppConfig) (iMirror, func(), error) {
	if cfg.RedisHost == "" {
		return mirror.Noop{}, func() {}, nil
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return mirrorRedis.NewRepo(rc), func() { rc.Close() }, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel, _ := parseLogLevel(cfg.LogLevel)
	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	playerMirror, closeMirror, err := newMirror(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeMirror()

	registry := player.NewRegistry(logger)
	connectionRepo := inmemory.NewRepo(logger)
	saver := snapshot.NewSaver(afero.NewOsFs(), &snapshot.Config{
		Dir:          cfg.ScreenshotDir,
		AllowedHosts: cfg.ScreenshotHosts,
	}, &http.Client{Timeout: 30 * time.Second}, logger)
	hostingService := hosting.NewService(registry, connectionRepo, playerMirror, saver, logger)
	controller := controller.NewController(hostingService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
