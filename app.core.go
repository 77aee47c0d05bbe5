package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	redisClient    *redis.Client
	cleanups       []func() error
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App.
//
//nolint:funlen
func NewApp(configFile, envFile string) (AppProvider, error) {
	config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewLogWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, clock)
	app := &App{
		logger:   logger,
		config:   config,
		cleanups: []func() error{flusher, logWriter.Close},
	}

	metrics := NewMetrics(prometheus.NewRegistry())
	storage := NewMemoryBookStorage(logger)

	queue, mirror, err := app.setupMirror(metrics)
	if err != nil {
		app.Clean()
		return nil, err
	}

	bookService := NewBookService(logger, config, storage, queue, metrics)
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		metrics,
		mirror,
		bookService,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	public, ops := apiService.MiddlewaresStacks()
	router := apiService.SetupRoutes(httprouter.New(), &MiddlewareMap{public: public.Chain, ops: ops.Chain})
	app.server = newHTTPServer(&config.Server, router)

	return app, nil
}

// timeoutDetail is the body sent by the timeout handler. It keeps the
// same shape as every other api error.
const timeoutDetail = `{"detail":"Timeout. Processing taking too long. Please reach out to support."}`

// jsonTimeoutHandler labels the timeout handler body as json.
func jsonTimeoutHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&timeoutResponseWriter{w}, r)
	})
}

// timeoutResponseWriter sets the json content type on a 503
// response which does not carry one yet.
type timeoutResponseWriter struct {
	http.ResponseWriter
}

func (tw *timeoutResponseWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && tw.Header().Get("Content-Type") == "" {
		tw.Header().Set("Content-Type", "application/json; charset=UTF-8")
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutResponseWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}

func newHTTPServer(sc *ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:           net.JoinHostPort(sc.Host, sc.Port),
		Handler:        jsonTimeoutHandler(http.TimeoutHandler(router, sc.RequestTimeout, timeoutDetail)),
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
		ConnContext:    SaveConnInContext,
	}
}

// setupMirror wires the mutation queue, the bolt mirror and the consumer
// between them. It returns nil values when the mirror is disabled.
func (app *App) setupMirror(metrics *Metrics) (Queuer, BookMirror, error) {
	if !app.config.Mirror.Enable {
		return nil, nil, nil
	}

	var queue Queuer
	if app.config.Mirror.Backend == MirrorBackendRedis {
		client, err := GetRedisClient(app.config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		app.redisClient = client
		// the bolt mirror starts empty so pending events must go too.
		if err := DropRedisQueue(context.Background(), client); err != nil {
			return nil, nil, fmt.Errorf("failed to reset redis mirror queue: %s", err)
		}
		queue = NewRedisQueue(client)
	} else {
		queue = NewMemoryQueue(app.config.Mirror.QueueSize)
	}

	db, err := GetBoltDBClient(app.config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open boltdb mirror: %s", err)
	}
	mirror := NewBoltBookMirror(app.logger, &app.config.BoltDB, db)
	// the mirror must be closed before the logs get flushed.
	app.cleanups = append([]func() error{mirror.Close}, app.cleanups...)

	consumer := NewMirrorConsumer(app.logger, queue, mirror, metrics)
	app.queueConsumers = append(app.queueConsumers, func(ctx context.Context) error {
		return consumer.Consume(ctx, MirrorQueues...)
	})
	return queue, mirror, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions. The
// logs flusher and writer closer are registered last.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		if err := f(); err != nil {
			fmt.Fprintln(os.Stderr, "app cleanup:", err)
		}
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.Bool("app.mirror", app.config.Mirror.Enable),
		)
		err := app.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop waits for the group context then shuts the server down, closing it
// outright when the graceful shutdown fails. It always returns nil so the
// group reports the Serve result only.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		reason := "errored at running"
		if nCtx.Err() != nil {
			reason = "requested to stop"
		}
		app.logger.Info("api server stopping", zap.String("reason", reason))

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(sCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Warn("api server graceful shutdown failed", zap.Error(err))
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		} else {
			app.logger.Info("api server graceful shutdown succeeded")
		}

		// unblocks the redis queue consumer.
		if app.redisClient != nil {
			_ = app.redisClient.Close()
		}
		return nil
	}
}

// ConsumeQueues starts every registered queue consumer in the group.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error { return consume(gCtx) })
		}
		return nil
	}
}
