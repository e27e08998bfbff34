package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"mediabrowser/internal/config"
	"mediabrowser/internal/events"
	"mediabrowser/internal/logging"
)

func main() {
	err := godotenv.Load()
	if os.IsNotExist(err) {
		log.Printf("no .env file found, skipping")
	} else if err != nil {
		log.Fatalf("failed loading .env file: %s", err)
	}

	err = newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaults := config.Default()

	app := cli.NewApp()
	app.Name = "media-browser"
	app.Usage = "Browse, search and stream a media folder."
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "optional TOML config file",
			EnvVars: []string{"MEDIA_CONFIG"},
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   defaults.Port,
			Usage:   "port to run server on",
			EnvVars: []string{"MEDIA_PORT"},
		},
		&cli.StringFlag{
			Name:    "media-root",
			Value:   defaults.MediaRoot,
			Usage:   "directory served as the media library",
			EnvVars: []string{"MEDIA_ROOT"},
		},
		&cli.StringFlag{
			Name:    "data-directory",
			Value:   defaults.DataDirectory,
			Usage:   "data directory where users, playlists and history are stored",
			EnvVars: []string{"MEDIA_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "static-directory",
			Value:   defaults.StaticDirectory,
			Usage:   "directory holding the built web player",
			EnvVars: []string{"MEDIA_STATIC_DIR"},
		},
		&cli.StringSliceFlag{
			Name:    "deny",
			Value:   cli.NewStringSlice(defaults.Deny...),
			Usage:   "entry names hidden from listings and search",
			EnvVars: []string{"MEDIA_DENY"},
		},
		&cli.BoolFlag{
			Name:    "hide-dotfiles",
			Value:   defaults.HideDotfiles,
			Usage:   "hide entries whose name starts with a dot",
			EnvVars: []string{"MEDIA_HIDE_DOTFILES"},
		},
		&cli.IntFlag{
			Name:    "search-limit",
			Value:   defaults.SearchLimit,
			Usage:   "maximum number of search results",
			EnvVars: []string{"MEDIA_SEARCH_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "history-limit",
			Value:   defaults.HistoryLimit,
			Usage:   "history entries kept per user",
			EnvVars: []string{"MEDIA_HISTORY_LIMIT"},
		},
		&cli.Int64Flag{
			Name:    "upload-limit",
			Value:   defaults.UploadLimit,
			Usage:   "maximum upload size in bytes",
			EnvVars: []string{"MEDIA_UPLOAD_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "session-secret",
			Usage:   "secret used to sign session cookies",
			EnvVars: []string{"MEDIA_SESSION_SECRET"},
		},
		&cli.DurationFlag{
			Name:    "session-max-age",
			Value:   defaults.SessionMaxAge,
			Usage:   "lifetime of a session",
			EnvVars: []string{"MEDIA_SESSION_MAX_AGE"},
		},
		&cli.BoolFlag{
			Name:    "secure-cookies",
			Usage:   "mark session cookies as secure",
			EnvVars: []string{"MEDIA_SECURE_COOKIES"},
		},
		&cli.StringFlag{
			Name:    "admin-password",
			Value:   defaults.AdminPassword,
			Usage:   "password of the admin account created on first start",
			EnvVars: []string{"MEDIA_ADMIN_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "credential-scheme",
			Value:   defaults.CredentialScheme,
			Usage:   "how new passwords are stored: legacy or bcrypt",
			EnvVars: []string{"MEDIA_CREDENTIAL_SCHEME"},
		},
		&cli.StringFlag{
			Name:    "store",
			Value:   defaults.Store,
			Usage:   "document store backend: file or sqlite",
			EnvVars: []string{"MEDIA_STORE"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis URL to publish change events to",
			EnvVars: []string{"MEDIA_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   defaults.LogLevel,
			Usage:   "debug, info, warn or error",
			EnvVars: []string{"MEDIA_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   defaults.LogFormat,
			Usage:   "text or json",
			EnvVars: []string{"MEDIA_LOG_FORMAT"},
		},
	}
	app.Action = run
	return app
}

// loadConfig reads the config file and applies every flag that was set
// explicitly on top of it.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if ctx.IsSet("port") {
		cfg.Port = ctx.Int("port")
	}
	if ctx.IsSet("media-root") {
		cfg.MediaRoot = ctx.String("media-root")
	}
	if ctx.IsSet("data-directory") {
		cfg.DataDirectory = ctx.String("data-directory")
	}
	if ctx.IsSet("static-directory") {
		cfg.StaticDirectory = ctx.String("static-directory")
	}
	if ctx.IsSet("deny") {
		cfg.Deny = ctx.StringSlice("deny")
	}
	if ctx.IsSet("hide-dotfiles") {
		cfg.HideDotfiles = ctx.Bool("hide-dotfiles")
	}
	if ctx.IsSet("search-limit") {
		cfg.SearchLimit = ctx.Int("search-limit")
	}
	if ctx.IsSet("history-limit") {
		cfg.HistoryLimit = ctx.Int("history-limit")
	}
	if ctx.IsSet("upload-limit") {
		cfg.UploadLimit = ctx.Int64("upload-limit")
	}
	if ctx.IsSet("session-secret") {
		cfg.SessionSecret = ctx.String("session-secret")
	}
	if ctx.IsSet("session-max-age") {
		cfg.SessionMaxAge = ctx.Duration("session-max-age")
	}
	if ctx.IsSet("secure-cookies") {
		cfg.SecureCookies = ctx.Bool("secure-cookies")
	}
	if ctx.IsSet("admin-password") {
		cfg.AdminPassword = ctx.String("admin-password")
	}
	if ctx.IsSet("credential-scheme") {
		cfg.CredentialScheme = ctx.String("credential-scheme")
	}
	if ctx.IsSet("store") {
		cfg.Store = ctx.String("store")
	}
	if ctx.IsSet("redis-url") {
		cfg.RedisURL = ctx.String("redis-url")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("log-format") {
		cfg.LogFormat = ctx.String("log-format")
	}

	return cfg, cfg.Validate()
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	slog.SetDefault(logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	var publisher events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		rp, err := events.Dial(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rp.Close()
		publisher = rp
	}

	handler, err := newServer(ctx.Context, cfg, publisher)
	if err != nil {
		return err
	}
	defer handler.Close()

	// Start HTTP handler.
	quit := make(chan os.Signal, 2)
	var wg sync.WaitGroup
	wg.Add(1)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer wg.Done()

		slog.Info("serving", "address", server.Addr, "media_root", handler.catalog.Root().Dir(), "store", cfg.Store)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			quit <- os.Interrupt
		}
	}()

	signal.Notify(
		quit,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	<-quit

	slog.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
		_ = server.Close()
	}

	wg.Wait()
	return nil
}
