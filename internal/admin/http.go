package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nemanja-m/gopool/internal/shared/logging"
	"github.com/nemanja-m/gopool/pkg/pool"
)

// StatsProvider exposes a pool snapshot. *pool.Pool implements it.
type StatsProvider interface {
	Stats() pool.Stats
}

type healthResponse struct {
	Status string     `json:"status"`
	Pool   pool.Stats `json:"pool"`
}

type API struct {
	stats    StatsProvider
	gatherer prometheus.Gatherer
	logger   logging.Logger
}

func NewAPI(stats StatsProvider, gatherer prometheus.Gatherer, logger logging.Logger) *API {
	return &API{
		stats:    stats,
		gatherer: gatherer,
		logger:   logger,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", a.health)
}

// health handles GET /healthz
func (a *API) health(w http.ResponseWriter, r *http.Request) {
	stats := a.stats.Stats()

	resp := healthResponse{Status: "ok", Pool: stats}
	status := http.StatusOK
	if stats.Running < stats.Workers {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Warn("Failed to encode health response", "error", err)
	}
}

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

func NewHTTPServer(addr string, stats StatsProvider, gatherer prometheus.Gatherer, logger logging.Logger) *http.Server {
	api := NewAPI(stats, gatherer, logger)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
