// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Zero(t, Ratio{}.Rate())
	assert.Equal(t, 0.75, Ratio{Hit: 3, Miss: 1}.Rate())
	assert.Equal(t, int64(750), Ratio{Hit: 3, Miss: 1}.PerMille())
	assert.Equal(t, int64(1000), Ratio{Hit: 5}.PerMille())
}

func TestStats(t *testing.T) {
	var cs Stats

	changed, r := cs.Stats()
	assert.False(t, changed, "no lookups keeps the zero rate")
	assert.Equal(t, Ratio{}, r)

	cs.Hit()
	cs.Miss()
	changed, r = cs.Stats()
	assert.True(t, changed)
	assert.Equal(t, Ratio{Hit: 1, Miss: 1}, r)

	cs.Hit()
	cs.Miss()
	changed, _ = cs.Stats()
	assert.False(t, changed, "rate still 50%")

	assert.Equal(t, int64(3), cs.Hit())
	changed, r = cs.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(600), r.PerMille())
}
