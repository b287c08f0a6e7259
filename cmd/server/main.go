package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-ssi-auth-server/correlation"
	"github.com/jrsteele09/go-ssi-auth-server/correlation/memstore"
	"github.com/jrsteele09/go-ssi-auth-server/correlation/redisstore"
	"github.com/jrsteele09/go-ssi-auth-server/credential"
	"github.com/jrsteele09/go-ssi-auth-server/internal/config"
	"github.com/jrsteele09/go-ssi-auth-server/internal/database"
	"github.com/jrsteele09/go-ssi-auth-server/mail"
	"github.com/jrsteele09/go-ssi-auth-server/realtime"
	"github.com/jrsteele09/go-ssi-auth-server/roles"
	fakerolerepo "github.com/jrsteele09/go-ssi-auth-server/roles/repofake"
	pgrolerepo "github.com/jrsteele09/go-ssi-auth-server/roles/repopg"
	"github.com/jrsteele09/go-ssi-auth-server/server"
	"github.com/jrsteele09/go-ssi-auth-server/ssi"
	"github.com/jrsteele09/go-ssi-auth-server/token"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	fakeuserrepo "github.com/jrsteele09/go-ssi-auth-server/users/repofake"
	pguserrepo "github.com/jrsteele09/go-ssi-auth-server/users/repopg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogger(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	userRepo, roleRepo, db, err := openDirectory(ctx, c)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	store := openStore(c)
	defer store.Close()

	registry := realtime.NewRegistry()
	defer registry.Close()

	issuer := token.NewIssuer(token.NewHMACSigner(c.GetJWTSecret()), c.GetJWTExpiry())

	service, err := ssi.NewService(ssi.Deps{
		Users:         userRepo,
		Roles:         roleRepo,
		Store:         store,
		Notifier:      realtime.NewNotifier(registry),
		Verifier:      credential.NewSyntaxVerifier(),
		Tokens:        issuer,
		Settings:      config.NewFileSettings(c.GetSettingsFile()),
		Confirmations: mail.NewConfirmationSender(mail.NewFromConfig(c), c.GetEmailConfirmationURL(), c.GetAppName()),
	}, ssi.WithCorrelationTTL(c.GetCorrelationTTL()))
	if err != nil {
		return fmt.Errorf("ssi.NewService: %w", err)
	}

	handler, err := server.New(c, server.Deps{
		Service:  service,
		Sessions: issuer,
		Users:    userRepo,
		Store:    store,
		Registry: registry,
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-stopSignal():
	}
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogger(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if c.IsDevelopment() {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// openDirectory uses Postgres when DATABASE_URL is set and in-memory accounts otherwise
func openDirectory(ctx context.Context, c config.DatabaseConfig) (users.UserRepo, roles.RoleRepo, *sql.DB, error) {
	if c.GetDatabaseURL() == "" {
		log.Warn().Msg("DATABASE_URL not set, accounts are kept in memory")
		return fakeuserrepo.NewFakeUserRepo(), fakerolerepo.NewFakeRoleRepo(), nil, nil
	}

	db, err := database.Open(ctx, c.GetDatabaseURL())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database.Open: %w", err)
	}
	return pguserrepo.NewPostgresRepository(db), pgrolerepo.NewPostgresRepository(db), db, nil
}

// openStore uses Redis when REDIS_HOST is set
func openStore(c config.StoreConfig) correlation.Store {
	if c.GetRedisAddr() == "" {
		log.Warn().Msg("REDIS_HOST not set, correlations are kept in memory")
		return memstore.New(c.GetCorrelationMaxTTL())
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("using redis correlation store")
	return redisstore.NewFromConfig(c)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
