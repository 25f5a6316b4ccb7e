// Package app assembles the services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"textorigin/internal/classifier"
	"textorigin/internal/config"
	"textorigin/internal/handler"
	"textorigin/internal/metrics"
	"textorigin/internal/middleware"
	"textorigin/internal/notify"
	"textorigin/internal/repository"
	"textorigin/internal/server"
	"textorigin/internal/service"
)

type App struct {
	cfg    *config.Config
	logger *zap.Logger
	audit  *logrus.Logger

	Repo      repository.CorpusRepository
	Metrics   *metrics.Metrics
	Trainer   classifier.Trainer
	Detector  *service.DetectorService
	Scheduler *service.RetrainScheduler
	Corpus    *service.CorpusService
	Auth      service.AuthService
	Bot       *notify.Bot

	redis *redis.Client
}

// New opens the corpus store and builds every service. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, audit *logrus.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, audit: audit}

	repo, err := OpenCorpus(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Repo = repo

	if a.Metrics, err = metrics.New(); err != nil {
		a.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	if a.Trainer, err = NewTrainer(cfg); err != nil {
		a.Close()
		return nil, err
	}

	a.Bot, err = notify.NewBot(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram bot, continuing without it", zap.Error(err))
		a.Bot = nil
	}
	var notifier notify.Notifier = notify.Nop{}
	if a.Bot != nil {
		notifier = a.Bot
	}

	a.Detector = service.NewDetectorService(repo, a.Trainer, service.DetectorConfig{
		ArtifactPath: cfg.Model.ArtifactPath,
	}, a.Metrics, notifier, logger)
	a.Scheduler = service.NewRetrainScheduler(a.Detector, service.RetrainMode(cfg.Training.RetrainOnMutation), cfg.Training.Debounce, logger)
	a.Corpus = service.NewCorpusService(repo, a.Scheduler, notifier, a.Metrics, cfg.Model.TopWords, logger)
	a.Bot.SetStatusFunc(a.statusText)

	denylist := service.NewMemoryDenylist()
	if cfg.Auth.Denylist == "redis" {
		a.redis, err = service.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			a.Close()
			return nil, err
		}
		denylist = service.NewRedisDenylist(a.redis)
	}
	if cfg.Auth.PasswordHash == "" {
		logger.Warn("No admin password hash configured, admin login is disabled")
	}
	if cfg.InsecureSecret {
		logger.Warn("SECRET_KEY is not set, using an insecure development key")
	}
	a.Auth = service.NewAuthService(service.AuthConfig{
		PasswordHash: cfg.Auth.PasswordHash,
		Secret:       []byte(cfg.Auth.SecretKey),
		TokenTTL:     cfg.Auth.TokenTTL,
	}, denylist, logger)

	return a, nil
}

// OpenCorpus opens the configured corpus store.
func OpenCorpus(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CorpusRepository, error) {
	var (
		repo repository.CorpusRepository
		err  error
	)
	switch cfg.Storage.Driver {
	case "json":
		repo, err = repository.NewJSONCorpus(cfg.Storage.Path)
	case "sqlite":
		repo, err = repository.NewSQLiteCorpus(ctx, cfg.Storage.Path, logger)
	case "postgres":
		repo, err = repository.NewPostgresCorpus(ctx, cfg.Storage.URL, logger)
	case "mongo":
		repo, err = repository.NewMongoCorpus(ctx, cfg.Storage.URL, cfg.Storage.Database, cfg.Storage.Collection, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s corpus: %w", cfg.Storage.Driver, err)
	}
	logger.Info("Corpus store opened", zap.String("driver", cfg.Storage.Driver))
	return repo, nil
}

// NewTrainer builds the trainer for the configured model kind.
func NewTrainer(cfg *config.Config) (classifier.Trainer, error) {
	kind := classifier.Kind(cfg.Model.Kind)
	if kind == classifier.KindTransformer {
		t := cfg.Model.Transformer
		return classifier.NewRemoteTransformer(t.URL, t.Epochs, t.BatchSize, t.GradSteps, t.Timeout), nil
	}
	trainer, err := classifier.NewLocalTrainer(kind, classifier.Options{
		NGramMin:     cfg.Model.NGramMin,
		NGramMax:     cfg.Model.NGramMax,
		MinDF:        cfg.Model.MinDF,
		Sublinear:    cfg.Model.Sublinear,
		Alpha:        cfg.Model.Alpha,
		Epochs:       cfg.Model.Epochs,
		LearningRate: cfg.Model.LearningRate,
		L2:           cfg.Model.L2,
		Seed:         cfg.Model.Seed,
	})
	if err != nil {
		return nil, err
	}
	return trainer, nil
}

// Seed fills an empty corpus from training.seed_file, or the built-in samples.
func (a *App) Seed(ctx context.Context) error {
	samples := repository.DefaultSeed()
	if a.cfg.Training.SeedFile != "" {
		var err error
		if samples, err = repository.LoadSeedFile(a.cfg.Training.SeedFile); err != nil {
			return err
		}
	}
	n, err := repository.SeedIfEmpty(ctx, a.Repo, samples)
	if err != nil {
		return err
	}
	if n > 0 {
		a.logger.Info("Seeded empty corpus", zap.Int("samples", n))
	}
	return nil
}

// InitModel trains on startup or restores the persisted model. With
// training.require_initial_model an unavailable model is fatal.
func (a *App) InitModel(ctx context.Context) error {
	var err error
	if a.cfg.Training.TrainOnStartup {
		_, err = a.Detector.Train(ctx)
	} else if err = a.Detector.LoadFromDisk(); errors.Is(err, os.ErrNotExist) {
		a.logger.Info("No persisted model found, training a new one")
		_, err = a.Detector.Train(ctx)
	}
	if err == nil {
		return nil
	}
	if a.cfg.Training.RequireInitialModel {
		return fmt.Errorf("initial model: %w", err)
	}
	a.logger.Warn("Starting without a model, /predict is unavailable until a retrain succeeds", zap.Error(err))
	return nil
}

// Serve runs the HTTP server, the retrain scheduler and the Telegram bot until ctx
// is done.
func (a *App) Serve(ctx context.Context) error {
	limiter := middleware.NewPasswordLimiter(a.cfg.Auth.LoginRate, a.cfg.Auth.LoginBurst)
	srv := server.NewServer(server.Deps{
		Auth:        a.Auth,
		AuthHandler: handler.NewAuthHandler(a.Auth, a.Metrics, limiter, a.audit),
		Limiter:     limiter,
		Detector:    a.Detector,
		Corpus:      a.Corpus,
		Scheduler:   a.Scheduler,
		Metrics:     a.Metrics,
	}, server.Options{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		MaxBodyBytes:    a.cfg.Server.MaxBodyBytes,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	}, a.logger)

	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	if a.Bot != nil {
		g.Go(func() error {
			if err := a.Bot.Start(ctx); err != nil {
				a.logger.Error("Telegram bot failed", zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

func (a *App) statusText(ctx context.Context) string {
	st := a.Detector.Status()
	n, err := a.Corpus.Count(ctx)
	if err != nil {
		return fmt.Sprintf("Korpus nicht erreichbar: %v", err)
	}
	if !st.Loaded {
		return fmt.Sprintf("Kein Modell geladen. Korpus: %d Texte.", n)
	}
	return fmt.Sprintf("Modell v%d (%s), trainiert am %s mit %d Texten. Korpus: %d Texte.",
		st.Version, st.Kind, st.TrainedAt.Format("2006-01-02 15:04"), st.Samples, n)
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil {
			a.logger.Warn("Failed to close corpus store", zap.Error(err))
		}
	}
}
