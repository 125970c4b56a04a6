package router

import (
	"context"
	"net/http"

	"github.com/fitstakes/backend/config"
	"github.com/fitstakes/backend/pkg/logger"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before (or after) the handler and may derive a new
// context. Returning an error stops the chain and writes an error response.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, successful or not.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux    *http.ServeMux
	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB
	node   *snowflake.Node

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger, node *snowflake.Node) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		logger: logger,
		db:     db,
		node:   node,
	}
}

// Branch derives a router sharing the same mux whose middleware chains can
// diverge from this point on.
func (r *Router) Branch() *Router {
	branch := &Router{
		mux:    r.mux,
		cfg:    r.cfg,
		logger: r.logger,
		db:     r.db,
		node:   r.node,
	}

	branch.befores = append(branch.befores, r.befores...)
	branch.afters = append(branch.afters, r.afters...)
	branch.closers = append(branch.closers, r.closers...)
	return branch
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// AddHandler mounts a plain http.Handler, e.g. the prometheus endpoint.
func (r *Router) AddHandler(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	if !r.cfg.ApiServer.AllowCORS {
		return r.mux
	}

	return cors.AllowAll().Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}
