package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/storage"
	"golang.org/x/time/rate"
)

const (
	// maxBodyBytes bounds problem uploads.
	maxBodyBytes = 1 << 20
	// maxNodes bounds the mesh a request may ask for; assembly is dense.
	maxNodes = 2001
)

type Server struct {
	store   *storage.Store
	limiter *IPRateLimiter
	logger  *log.Logger
}

// New builds a server limited to env.Rate requests per second per client
// with bursts of env.Burst. store may be nil, in which case the run
// endpoints answer 404 and solves are never saved.
func New(env config.Env, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:   store,
		limiter: NewIPRateLimiter(rate.Limit(env.Rate), env.Burst),
		logger:  logger,
	}
}

// Handler returns the routed API wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.LimitMiddleware)

	api.HandleFunc("/solve", s.Solve).Methods("POST")
	api.HandleFunc("/modes", s.Modes).Methods("POST")
	api.HandleFunc("/report", s.Report).Methods("POST")
	api.HandleFunc("/workbook", s.Workbook).Methods("POST")

	api.HandleFunc("/presets", s.ListPresets).Methods("GET")
	api.HandleFunc("/presets/{name}", s.GetPreset).Methods("GET")

	api.HandleFunc("/runs", s.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.GetRun).Methods("GET")
	api.HandleFunc("/runs/{id}/nodes.csv", s.RunNodes).Methods("GET")

	return s.logRequests(CORS(r))
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then drains
// open connections for up to five seconds.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
