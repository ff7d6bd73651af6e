// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/jarledger/jard/co"
	"github.com/jarledger/jard/log"
)

var logger = log.WithContext("pkg", "httpserver")

// serve listens on addr and serves srv until the returned func is called.
func serve(name, addr string, srv *http.Server) (net.Addr, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen %v addr [%v]", name, addr)
	}

	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server stopped", "name", name, "err", err)
		}
	})
	return listener.Addr(), func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// StartAPIServer serves the ledger API at addr.
func StartAPIServer(addr string, handler http.Handler) (string, func(), error) {
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	bound, stop, err := serve("API", addr, srv)
	if err != nil {
		return "", nil, err
	}
	return "http://" + bound.String() + "/", stop, nil
}
