// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixge/httpsnoop"

	"github.com/jarledger/jard/log"
)

// RequestLoggerConfig decides which requests get logged.
type RequestLoggerConfig struct {
	// Enabled logs every request.
	Enabled *atomic.Bool
	// SlowQueriesThreshold logs requests slower than it, 0 disables.
	SlowQueriesThreshold time.Duration
	// Log5xxErrors logs requests answered with a server error.
	Log5xxErrors bool
}

// RequestLogger returns a middleware logging requests with their body.
func RequestLogger(logger log.Logger, cfg RequestLoggerConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled.Load() && cfg.SlowQueriesThreshold == 0 && !cfg.Log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}
			var body []byte
			if r.Body != nil {
				var err error
				if body, err = io.ReadAll(r.Body); err != nil {
					logger.Warn("unexpected body read error", "err", err)
					http.Error(w, "unable to read body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			// websocket upgrades need the hijacker, which httpsnoop keeps
			m := httpsnoop.CaptureMetrics(next, w, r)

			slow := cfg.SlowQueriesThreshold > 0 && m.Duration > cfg.SlowQueriesThreshold
			failed := cfg.Log5xxErrors && m.Code >= http.StatusInternalServerError
			if cfg.Enabled.Load() || slow || failed {
				logger.Info("API Request",
					"durationMs", m.Duration.Milliseconds(),
					"uri", r.URL.String(),
					"method", r.Method,
					"status", m.Code,
					"body", string(body),
				)
			}
		})
	}
}
