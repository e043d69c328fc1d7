package httpserver

import (
	"net/http"

	"github.com/yndnr/servetls/internal/server/httpserver/handler"
	"github.com/yndnr/servetls/internal/telemetry/logger"
	"github.com/yndnr/servetls/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTPS file router.
type RouterConfig struct {
	// Files serves the directory tree. It is mounted without a ServeMux so
	// request paths reach it uncleaned and traversal attempts can be refused.
	Files http.Handler

	// Logger for access logs and recovered panics.
	Logger logger.Logger

	// Metrics records request metrics when set.
	Metrics *metric.Registry
}

// NewRouter wraps the file handler with the request middleware chain.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	// Order: Recover -> RequestID -> Metrics -> AccessLog -> Files
	chain := []Middleware{Recover(log), RequestID()}
	if cfg.Metrics != nil {
		chain = append(chain, Metrics(cfg.Metrics))
	}
	chain = append(chain, AccessLog(log))

	return Chain(cfg.Files, chain...)
}

// AdminRouterConfig holds configuration for the admin router.
type AdminRouterConfig struct {
	Metrics *metric.Registry
	Ready   handler.ReadyFunc
	Logger  logger.Logger

	// AllowList is the IP/CIDR allowlist for the admin API (empty = no restriction).
	AllowList []string
}

// NewAdminRouter creates the admin router serving /health, /ready and /metrics.
func NewAdminRouter(cfg *AdminRouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	var metrics http.Handler
	if cfg.Metrics != nil {
		metrics = cfg.Metrics.Handler()
	}

	h := handler.New(metrics, cfg.Ready, log)
	return Chain(h,
		Recover(log),
		RequestID(),
		NetworkACL(&NetworkACLConfig{AllowList: cfg.AllowList, Logger: log}),
	)
}
