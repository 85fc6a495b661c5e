package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/models"
	"taskboard/internal/policy"
	"taskboard/internal/server"
	"taskboard/internal/service"
	"taskboard/internal/storage/sqlite"
)

const usage = `usage: taskboard [command] [flags]

commands:
  serve                 run the HTTP API (default)
  user add              create an account
  token                 issue a bearer token for an account
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "taskboard:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serve(cfg, args)
	case "user":
		if len(args) == 0 || args[0] != "add" {
			return errors.New("usage: taskboard user add -name NAME -email EMAIL [-role admin|user]")
		}
		return addUser(cfg, args[1:])
	case "token":
		return issueToken(cfg, args)
	case "help":
		fmt.Print(usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

// commonFlags registers the flags every command shares. Values default to
// the environment configuration.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to sqlite database file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Rotated log file (stdout when empty)")
}

func serve(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory with built frontend")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret used to verify bearer tokens")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(true); err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("taskboard starting", slog.String("db", cfg.DBPath))

	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	svc := service.New(store, service.WithLogger(logger))
	srv := server.New(svc, tokens, logger, cfg.StaticDir)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}

func addUser(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("user add", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	var cmd service.CreateUser
	fs.StringVar(&cmd.Name, "name", "", "Display name")
	fs.StringVar(&cmd.Email, "email", "", "Unique email address")
	fs.StringVar(&cmd.Role, "role", string(models.RoleUser), "Role: admin or user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(false); err != nil {
		return err
	}

	return withServices(cfg, func(ctx context.Context, svc *service.Services) error {
		user, err := svc.Users.Create(ctx, cmd)
		if err != nil {
			return err
		}
		fmt.Printf("created user %d (%s, %s)\n", user.ID, user.Email, user.Role)
		return nil
	})
}

func issueToken(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret used to sign the token")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Token lifetime (0 never expires)")
	userID := fs.Int64("user-id", 0, "Account to issue the token for")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(true); err != nil {
		return err
	}
	if *userID <= 0 {
		return errors.New("-user-id is required")
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	return withServices(cfg, func(ctx context.Context, svc *service.Services) error {
		user, err := svc.Users.Me(ctx, policy.Caller{ID: *userID})
		if err != nil {
			return err
		}
		token, expires, err := tokens.Issue(user)
		if err != nil {
			return err
		}
		fmt.Println(token)
		if !expires.IsZero() {
			fmt.Fprintf(os.Stderr, "expires at %s\n", expires.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	})
}

// withServices opens the store for a one-shot administrative command.
func withServices(cfg config.Config, fn func(context.Context, *service.Services) error) error {
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()
	if cfg.LogFile == "" {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(context.Background(), service.New(store, service.WithLogger(logger)))
}
