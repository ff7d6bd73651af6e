// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/jarledger/jard/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
	metricActiveWebsocket = metrics.LazyLoadGauge("api_active_websocket_gauge")
)

// metricsMiddleware records metrics for each request, labeled by route name.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := "unknown"
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			name = route.GetName()
		}
		websocket := r.Header.Get("Upgrade") == "websocket"
		if websocket {
			metricActiveWebsocket().Add(1)
			defer metricActiveWebsocket().Add(-1)
		}

		m := httpsnoop.CaptureMetrics(next, w, r)

		labels := map[string]string{"name": name, "code": strconv.Itoa(m.Code), "method": r.Method}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		if !websocket {
			metricHTTPReqDuration().ObserveWithLabels(m.Duration.Milliseconds(), labels)
		}
	})
}
