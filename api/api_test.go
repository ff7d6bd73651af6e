// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/genesis"
	"github.com/jarledger/jard/lvldb"
	"github.com/jarledger/jard/metrics"
	"github.com/jarledger/jard/runtime"
	"github.com/jarledger/jard/state"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	stater := state.NewStater(db, 0)
	_, err = genesis.NewDevnet(0).Apply(stater)
	require.NoError(t, err)
	rt, err := runtime.New(stater, edb, runtime.ClockFunc(func() uint64 { return 100 }))
	require.NoError(t, err)

	handler, closeSubs := New(rt, edb, opts)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		srv.Close()
		rt.Close()
	})
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: "*", EventsLimit: 10})
	dev := genesis.DevAccounts()[0].Address.String()

	for _, path := range []string{"/pool", "/pool/accounts/" + dev, "/tokens/stake/" + dev} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}

	res, err := http.Post(srv.URL+"/events", "application/json", strings.NewReader(`{"kinds":["Initialized"]}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	// genesis is applied before the event db sees anything
	assert.Equal(t, "[]\n", string(body))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: "http://a.example, http://B.example"})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/pool", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://b.example")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "http://b.example", res.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://c.example")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	var reqLogs atomic.Bool
	srv := newTestServer(t, Options{AllowedOrigins: "*", EnableMetrics: true, EnableReqLogger: &reqLogs})

	for _, path := range []string{"/pool", "/pool", "/tokens/gold/0x00"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
	}

	rec := httptest.NewRecorder()
	metrics.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(rec.Body)
	require.NoError(t, err)

	family, ok := families["jard_api_request_count"]
	require.True(t, ok)
	counts := map[string]float64{}
	for _, m := range family.GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		counts[labels["name"]+" "+labels["code"]] += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(2), counts["GET /pool 200"])
	assert.Equal(t, float64(1), counts["GET /tokens/{token}/{address} 404"])
}
