// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarledger/jard/jar"
)

var (
	alice = jar.BytesToAddress([]byte("alice"))
	bob   = jar.BytesToAddress([]byte("bob"))
)

func newEvent(t uint64, kind string, account jar.Address, amount uint64) *Event {
	return &Event{
		Time:    t,
		Kind:    kind,
		Topic:   jar.Keccak256([]byte(kind)),
		Account: account,
		Amount:  uint256.NewInt(amount),
	}
}

func newTestDB(t *testing.T) *EventDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events := []*Event{
		newEvent(0, "Deposited", alice, 50),
		newEvent(10, "Replenished", bob, 10),
		newEvent(15, "Deposited", bob, 100),
		newEvent(45, "Withdrawn", bob, 50),
		newEvent(55, "Withdrawn", alice, 50),
	}
	require.NoError(t, db.Insert(context.Background(), events))
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	return db
}

func TestInsertAndFilterAll(t *testing.T) {
	db := newTestDB(t)

	all, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "Deposited", all[0].Kind)
	assert.Equal(t, alice, all[0].Account)
	assert.Equal(t, uint256.NewInt(50), all[0].Amount)
	assert.Equal(t, jar.Keccak256([]byte("Deposited")), all[0].Topic)

	seq, err := db.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
}

func TestFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter *Filter
		want   []uint64
	}{
		{"range", &Filter{Range: &Range{From: 10, To: 45}}, []uint64{2, 3, 4}},
		{"open range", &Filter{Range: &Range{From: 45}}, []uint64{4, 5}},
		{"account", &Filter{Accounts: []jar.Address{alice}}, []uint64{1, 5}},
		{"kinds", &Filter{Kinds: []string{"Withdrawn", "Replenished"}}, []uint64{2, 4, 5}},
		{"combined", &Filter{Accounts: []jar.Address{bob}, Kinds: []string{"Deposited"}}, []uint64{3}},
		{"desc", &Filter{Order: DESC}, []uint64{5, 4, 3, 2, 1}},
		{"page", &Filter{Options: &Options{Offset: 1, Limit: 2}}, []uint64{2, 3}},
		{"none", &Filter{Kinds: []string{"Caged"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.Filter(ctx, tt.filter)
			require.NoError(t, err)
			var seqs []uint64
			for _, ev := range events {
				seqs = append(seqs, ev.Seq)
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestInsertEmpty(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Insert(context.Background(), nil))
	seq, err := db.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Insert(context.Background(), []*Event{newEvent(1, "Caged", alice, 0)}))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())

	events, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.IsZero())
}

func TestFilterCanceled(t *testing.T) {
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Filter(ctx, nil)
	assert.Error(t, err)
}
