// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"time"

	"github.com/jarledger/jard/metrics"
)

var (
	metricInserted      = metrics.LazyLoadCounter("eventdb_inserted_count")
	metricQueryDuration = metrics.LazyLoadHistogram("eventdb_query_duration_ms", metrics.BucketOps)
)

func metricQueryStart() time.Time { return time.Now() }

func metricQueryDone(start time.Time) {
	metricQueryDuration().Observe(time.Since(start).Milliseconds())
}
