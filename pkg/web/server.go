package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/foolin/goview"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/valve"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"newtonmachine/pkg/utils"
)

const (
	cacheSize       = 64
	shutdownTimeout = 10 * time.Second
)

// Server is the web server for the Newton Machine
type Server struct {
	host  string
	port  string
	views *goview.ViewEngine
	cache *funcCache
	valve *valve.Valve

	// in flight renders are cancelled once shutdown begins
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer constructs a server rendering templates from viewsRoot
func NewServer(host, port, viewsRoot string) *Server {
	cfg := goview.DefaultConfig
	cfg.Root = viewsRoot
	cfg.DisableCache = true

	v := valve.New()
	ctx, cancel := utils.StopContext(v)

	return &Server{
		host:   host,
		port:   port,
		views:  goview.New(cfg),
		cache:  newFuncCache(cacheSize),
		valve:  v,
		ctx:    ctx,
		cancel: cancel,
	}
}

// FromEnv reads NEWTON_HOSTNAME, NEWTON_PORT and NEWTON_VIEWS (default
// "views") and constructs a server
func FromEnv() (*Server, error) {
	if err := checkEnv(); err != nil {
		return nil, err
	}

	return NewServer(
		os.Getenv("NEWTON_HOSTNAME"),
		os.Getenv("NEWTON_PORT"),
		utils.EnvDefault("NEWTON_VIEWS", "views"),
	), nil
}

func checkEnv() error {
	godotenv.Load()

	if os.Getenv("NEWTON_HOSTNAME") == "" {
		return errors.New("NEWTON_HOSTNAME is not set")
	}

	if os.Getenv("NEWTON_PORT") == "" {
		return errors.New("NEWTON_PORT is not set")
	}

	return nil
}

// Run listens for requests until ctx is done, then stops accepting
// connections, cancels running renders and waits for their handlers.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Println("[server] listening and serving on :" + s.port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Print("[server] shutting down ...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sctx)
		s.valve.Shutdown(shutdownTimeout)
		s.cancel()
		log.Println("[server] done!")
		return err
	})

	return g.Wait()
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.serveIndex())
	r.Get("/render", s.serveRender())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
