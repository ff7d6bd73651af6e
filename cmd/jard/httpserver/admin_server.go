// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jarledger/jard/api/admin"
	"github.com/jarledger/jard/health"
)

func StartAdminServer(
	addr string,
	logLevel *slog.LevelVar,
	health *health.Health,
	apiLogs *atomic.Bool,
) (string, func(), error) {
	adminHandler := admin.New(logLevel, health, apiLogs)

	srv := &http.Server{Handler: adminHandler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	bound, stop, err := serve("admin", addr, srv)
	if err != nil {
		return "", nil, err
	}
	return "http://" + bound.String() + "/admin", stop, nil
}
