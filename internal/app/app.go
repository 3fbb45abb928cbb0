package app

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/acaibowlz/routine-bot/internal/chat"
	"github.com/acaibowlz/routine-bot/internal/config"
	"github.com/acaibowlz/routine-bot/internal/profile"
	"github.com/acaibowlz/routine-bot/internal/scheduler"
	"github.com/acaibowlz/routine-bot/internal/store"
	"github.com/acaibowlz/routine-bot/internal/telegram"
)

type App struct {
	cfg config.Config
	log *zap.Logger
	bot *tgbotapi.BotAPI
	loc *time.Location

	repo    store.Repo
	router  *telegram.Router
	scanner *scheduler.Scanner
	httpSrv *http.Server
	cron    *cron.Cron
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	loc, err := time.LoadLocation(cfg.BotTZ)
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, log: log, bot: bot, loc: loc}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting routine-bot",
		zap.String("tz", a.cfg.BotTZ),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Bool("cron", a.cfg.CronEnabled),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	client := telegram.NewClient(a.bot, a.log)
	profiles := profile.NewCache(client.FetchDisplayName)
	engine := chat.New(a.repo, a.log, a.loc, profiles)
	a.router = telegram.NewRouter(client, engine, a.log, a.loc)
	a.scanner = scheduler.New(a.repo, a.log, client, profiles, a.loc)

	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      a.httpMux(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	if a.cfg.CronEnabled {
		a.cron = cron.New(cron.WithLocation(a.loc))
		_, err := a.cron.AddFunc("0 * * * *", func() {
			if _, err := a.scanner.ScanNow(ctx); err != nil {
				a.log.Error("scheduled scan failed", zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
		a.cron.Start()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil
		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) shutdown() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.repo != nil {
		_ = a.repo.Close()
	}
}

// httpMux exposes a liveness probe and the reminder trigger used when an
// external scheduler drives the hourly scan instead of the built-in cron.
func (a *App) httpMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/reminder/send", a.handleReminderSend)
	return mux
}

func (a *App) handleReminderSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token, ok := bearerToken(r)
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.ReminderToken)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	sum, err := a.scanner.ScanNow(r.Context())
	if err != nil {
		a.log.Error("triggered scan failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sum); err != nil {
		a.log.Warn("summary encode failed", zap.Error(err))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return "", false
	}
	return auth[len(prefix):], true
}
