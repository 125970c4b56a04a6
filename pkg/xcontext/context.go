// Package xcontext carries request-scoped infrastructure (database handle,
// configs, logger, snowflake node, actor id) through a plain context.Context.
package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/fitstakes/backend/config"
	"github.com/fitstakes/backend/pkg/logger"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type (
	dbKey               struct{}
	dbTransactionKey    struct{}
	configsKey          struct{}
	loggerKey           struct{}
	snowflakeKey        struct{}
	requestAccountIDKey struct{}
	httpRequestKey      struct{}
	startTimeKey        struct{}
	errorKey            struct{}
)

// dbTransaction is shared by every context derived after WithDBTransaction,
// so a commit is visible to the deferred rollback.
type dbTransaction struct {
	tx   *gorm.DB
	done bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database handle. Inside a transaction opened by
// WithDBTransaction it returns the transaction instead.
func DB(ctx context.Context) *gorm.DB {
	if holder, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok && !holder.done {
		return holder.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("database is not set up in context")
	}

	return db
}

// WithDBTransaction begins a transaction. Pair it with a deferred
// WithRollbackDBTransaction; the rollback becomes a no-op once
// WithCommitDBTransaction ran.
func WithDBTransaction(ctx context.Context) context.Context {
	if holder, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok && !holder.done {
		return ctx
	}

	tx := DB(ctx).Begin()
	if tx.Error != nil {
		Logger(ctx).Errorf("Cannot begin transaction: %v", tx.Error)
		return ctx
	}

	return context.WithValue(ctx, dbTransactionKey{}, &dbTransaction{tx: tx})
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction)
	if !ok || holder.done {
		return ctx
	}

	holder.done = true
	if err := holder.tx.Commit().Error; err != nil {
		Logger(ctx).Errorf("Cannot commit transaction: %v", err)
	}

	return ctx
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction)
	if !ok || holder.done {
		return ctx
	}

	holder.done = true
	if err := holder.tx.Rollback().Error; err != nil {
		Logger(ctx).Errorf("Cannot rollback transaction: %v", err)
	}

	return ctx
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		panic("configs is not set up in context")
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.INFO)
	}

	return l
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, ok := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	if !ok {
		panic("snowflake is not set up in context")
	}

	return node
}

// WithRequestAccountID records the authenticated account behind the current
// request. Authentication happens upstream; this only trusts what the
// gateway forwarded.
func WithRequestAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, requestAccountIDKey{}, accountID)
}

func RequestAccountID(ctx context.Context) string {
	id, ok := ctx.Value(requestAccountIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	if !ok {
		return nil
	}

	return req
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok {
		return time.Time{}
	}

	return t
}

type errorHolder struct {
	err error
}

// WithError prepares the context to carry a handler error out to closer
// middlewares. The router installs it once per request.
func WithError(ctx context.Context) context.Context {
	return context.WithValue(ctx, errorKey{}, &errorHolder{})
}

func SetError(ctx context.Context, err error) {
	if holder, ok := ctx.Value(errorKey{}).(*errorHolder); ok {
		holder.err = err
	}
}

func Error(ctx context.Context) error {
	if holder, ok := ctx.Value(errorKey{}).(*errorHolder); ok {
		return holder.err
	}

	return nil
}
