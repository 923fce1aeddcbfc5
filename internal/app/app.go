package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/pos-backend/internal/cfg"
	v1Http "github.com/DRSN-tech/pos-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/pos-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/pos-backend/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/pos-backend/internal/repository/minio"
	"github.com/DRSN-tech/pos-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/pos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pos-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/pos-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/closer"
	"github.com/DRSN-tech/pos-backend/pkg/clients"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/DRSN-tech/pos-backend/pkg/postgres"
	"github.com/DRSN-tech/pos-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	forcedTimeout   = 5 * time.Second
	cleanupTimeout  = 5 * time.Second
)

// App собирает зависимости и управляет жизненным циклом процесса.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	outboxWorker *kafka.OutboxWorker

	// отменяется при остановке, фоновые задачи MinIO завершаются вместе с ним
	appCtx    context.Context
	appCancel context.CancelFunc
}

// NewApp подключается к внешним сервисам и собирает слои приложения.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, logger logger.Logger) (app *App, err error) {
	appCtx, appCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:       cfg,
		logger:    logger,
		closer:    closer.NewCloser(forcedTimeout),
		appCtx:    appCtx,
		appCancel: appCancel,
	}
	defer func() {
		if err != nil {
			a.shutdown()
		}
	}()

	ctx, cancel := context.WithTimeout(appCtx, startupTimeout)
	defer cancel()

	db, err := initPGDB(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverterImpl{})
	billRepo := pgdb.NewBillRepo(db.Pool, pgdbConv.BillConverterImpl{})
	userRepo := pgdb.NewUserRepo(db.Pool, pgdbConv.UserConverterImpl{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverterImpl{}, cfg.Outbox.StaleAfter)
	txRunner := tr.NewRunner(db.Pool)

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error {
		return redisClient.Client.Close()
	})
	if err := redisClient.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ProductConverterImpl{}, cfg.Redis, logger)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureImageBucket(ctx, minioClient, cfg.Minio, logger); err != nil {
		logger.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, logger, appCtx)
	a.closer.Add("minio cleanup", func(ctx context.Context) error {
		cleanupCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()
		if err := imagesInfra.WaitForCleanup(cleanupCtx); err != nil {
			logger.Warnf("MinIO cleanup did not finish before shutdown, some objects may remain: %v", err)
		}
		return nil
	})

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(logger, cfg.Kafka)
		a.closer.Add("kafka producer", func(context.Context) error {
			return producer.Close()
		})
		if err := producer.EnsureTopic(startupTimeout); err != nil {
			// Топик может создаваться автоматически брокером
			logger.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
		}

		a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, logger, producer, cfg.Outbox, db.Dsn)
		a.closer.Add("outbox worker", func(context.Context) error {
			a.outboxWorker.Stop()
			return nil
		})
	} else {
		logger.Warnf("KAFKA_BROKERS is empty, bill events stay in outbox until a broker is configured")
	}

	billUC := usecase.NewBillUC(productRepo, billRepo, outboxRepo, txRunner, cacheRepo, logger)
	productUC := usecase.NewProductUC(productRepo, cacheRepo, logger)
	userUC := usecase.NewUserUC(userRepo, imagesInfra, logger)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger, cfg.Http.SwaggerURL)
	router.Init(billUC, productUC, userUC, cfg.Minio.MaxImageSize)

	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return a, nil
}

// Run запускает HTTP-сервер и outbox-воркер и блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(a.appCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Infof("HTTP server started on %s", a.httpSrv.Addr())
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	})

	if a.outboxWorker != nil {
		a.outboxWorker.Start(a.appCtx)
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
		a.shutdown()
		return nil
	})

	appErr := g.Wait()
	if appErr != nil {
		a.logger.Errorf(appErr, "application stopped with error")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// shutdown закрывает ресурсы в порядке, обратном регистрации.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}
	a.appCancel()
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db, logger)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to ping database")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
