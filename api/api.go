// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/jarledger/jard/api/events"
	"github.com/jarledger/jard/api/middleware"
	"github.com/jarledger/jard/api/pool"
	"github.com/jarledger/jard/api/subscriptions"
	"github.com/jarledger/jard/api/tokens"
	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          uint64
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router
func New(rt *runtime.Runtime, eventDB *eventdb.EventDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pool.New(rt).
		Mount(router, "/pool")
	tokens.New(rt).
		Mount(router, "/tokens")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLogger(logger, middleware.RequestLoggerConfig{
			Enabled:              opts.EnableReqLogger,
			SlowQueriesThreshold: opts.SlowQueriesThreshold,
			Log5xxErrors:         opts.Log5xxErrors,
		})(handler)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
