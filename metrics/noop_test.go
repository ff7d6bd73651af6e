// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	n := defaultNoopMetrics()
	server := httptest.NewServer(n.GetOrCreateHandler())
	t.Cleanup(server.Close)

	n.GetOrCreateCountMeter("count").Add(1)
	n.GetOrCreateCountVecMeter("countVec", []string{"kind"}).AddWithLabel(1, map[string]string{"nonsense": "ok"})
	n.GetOrCreateGaugeMeter("gauge").Set(1)
	n.GetOrCreateGaugeVecMeter("gaugeVec", []string{"kind"}).SetWithLabel(1, map[string]string{"nonsense": "ok"})
	n.GetOrCreateHistogramMeter("hist", nil).Observe(1)
	n.GetOrCreateHistogramVecMeter("histVec", nil, nil).ObserveWithLabels(1, nil)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
