package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/diet"
	"github.com/mtoivane/valmento/internal/envstruct"
	"github.com/mtoivane/valmento/internal/errors"
	"github.com/mtoivane/valmento/internal/flightrecorder"
	"github.com/mtoivane/valmento/internal/logging"
	"github.com/mtoivane/valmento/internal/pprofserver"
	"github.com/mtoivane/valmento/internal/profile"
	"github.com/mtoivane/valmento/internal/sqlite"
	"github.com/mtoivane/valmento/internal/training"
	"github.com/mtoivane/valmento/internal/userlock"
)

type application struct {
	logger          *slog.Logger
	sessionManager  *scs.SessionManager
	profileService  *profile.Service
	cycleService    *cycle.Service
	dietService     *diet.Service
	trainingService *training.Service
	allowedOrigins  []string
	flightRecorder  *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"VALMENTO_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"VALMENTO_SQLITE_URL" envDefault:"./valmento.sqlite3"`
	// OpenAIAPIKey enables AI-backed food catalog generation. Empty disables it.
	OpenAIAPIKey string `env:"VALMENTO_OPENAI_API_KEY" envDefault:""`
	// PeakEventDate is an optional competition date (2006-01-02) that activates
	// the peak-week phases for the seven preceding days.
	PeakEventDate string `env:"VALMENTO_PEAK_EVENT_DATE" envDefault:""`
	// AllowedOrigins is a comma-separated list of origins allowed to call the
	// API from a browser. Empty means same-origin only.
	AllowedOrigins string `env:"VALMENTO_ALLOWED_ORIGINS" envDefault:""`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"VALMENTO_PPROF_ADDR" envDefault:""`
	// TracesDir is the optional directory for flight recorder trace dumps
	// captured on request timeouts. Empty disables the recorder.
	TracesDir string `env:"VALMENTO_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	var recorder *flightrecorder.Recorder
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(logger, cfg.TracesDir); err != nil {
			return errors.Wrap(err, "create flight recorder", slog.String("dir", cfg.TracesDir))
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	var peakEventDate time.Time
	if cfg.PeakEventDate != "" {
		if peakEventDate, err = time.Parse(time.DateOnly, cfg.PeakEventDate); err != nil {
			return errors.Wrap(err, "parse peak event date", slog.String("date", cfg.PeakEventDate))
		}
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db)

	locker := userlock.New()
	profileService := profile.NewService(db, logger)
	cycleService := cycle.NewService(db, logger, peakEventDate)
	dietService := diet.NewService(db, logger, profileService, cycleService, locker, cfg.OpenAIAPIKey)
	trainingService := training.NewService(db, logger, profileService, locker)

	var allowedOrigins []string
	if cfg.AllowedOrigins != "" {
		allowedOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}

	app := application{
		logger:          logger,
		sessionManager:  sessionManager,
		profileService:  profileService,
		cycleService:    cycleService,
		dietService:     dietService,
		trainingService: trainingService,
		allowedOrigins:  allowedOrigins,
		flightRecorder:  recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                               //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
