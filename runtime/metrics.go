// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/metrics"
)

var (
	metricOpCount    = metrics.LazyLoadCounterVec("ledger_op_count", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("ledger_op_duration_ms", []string{"op"}, metrics.BucketOps)
	metricPool       = metrics.LazyLoadGaugeVec("ledger_pool", []string{"field"})
	metricCacheRate  = metrics.LazyLoadGauge("state_cache_hit_permille")
)

// wholeTokens truncates v to whole tokens, saturating at MaxInt64.
func wholeTokens(v *uint256.Int) int64 {
	w := new(uint256.Int).Div(v, jar.Precision)
	if !w.IsUint64() || w.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(w.Uint64())
}

func updatePoolMetrics(p *rewards.Pool) {
	gauge := metricPool()
	gauge.SetWithLabel(wholeTokens(p.TotalStaked), map[string]string{"field": "total_staked"})
	gauge.SetWithLabel(wholeTokens(p.TotalPending), map[string]string{"field": "total_pending"})
	gauge.SetWithLabel(wholeTokens(p.Held), map[string]string{"field": "held"})
	gauge.SetWithLabel(wholeTokens(p.Undistributed), map[string]string{"field": "undistributed"})
	gauge.SetWithLabel(wholeTokens(p.TotalReplenished), map[string]string{"field": "total_replenished"})
	gauge.SetWithLabel(wholeTokens(p.TotalPaid), map[string]string{"field": "total_paid"})
	gauge.SetWithLabel(int64(p.PeriodFinish), map[string]string{"field": "period_finish"})
}

func (rt *Runtime) updateCacheMetrics() {
	changed, r, ok := rt.stater.CacheStats()
	if !ok || !changed {
		return
	}
	metricCacheRate().Set(r.PerMille())
	logger.Debug("state cache", "hit", r.Hit, "miss", r.Miss, "rate", r.Rate())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case rewards.IsRejection(err):
		return "rejected"
	default:
		return "failed"
	}
}
