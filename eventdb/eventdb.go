// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps the history of committed ledger events in sqlite.
package eventdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/jar"
)

// EventDB is the event store.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the event db at path.
func New(path string) (edb *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if edb == nil {
			db.Close()
		}
	}()
	// a single connection serializes writers, and keeps an in-memory db alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{path, db, driverVer}, nil
}

// NewMem creates an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the db.
func (edb *EventDB) Close() error {
	return edb.db.Close()
}

// Path returns the db path.
func (edb *EventDB) Path() string {
	return edb.path
}

// DriverVersion returns the sqlite library version.
func (edb *EventDB) DriverVersion() string {
	return edb.driverVersion
}

// Insert stores events in one transaction and assigns their Seq.
func (edb *EventDB) Insert(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := edb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO event(time, kind, topic, account, amount) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	seqs := make([]uint64, len(events))
	for i, ev := range events {
		amount := new(uint256.Int)
		if ev.Amount != nil {
			amount = ev.Amount
		}
		enc := amount.Bytes32()
		res, err := stmt.ExecContext(ctx, ev.Time, ev.Kind, ev.Topic.Bytes(), ev.Account.Bytes(), enc[:])
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		seqs[i] = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for i, ev := range events {
		ev.Seq = seqs[i]
	}
	metricInserted().Add(int64(len(events)))
	return nil
}

// LastSeq returns the seq of the newest event, 0 if empty.
func (edb *EventDB) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := edb.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Filter queries events.
func (edb *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	stmt := "SELECT seq, time, kind, topic, account, amount FROM event WHERE 1"
	if filter == nil {
		return edb.query(ctx, stmt+" ORDER BY seq ASC")
	}

	var args []any
	if filter.Range != nil {
		stmt += " AND time >= ?"
		args = append(args, filter.Range.From)
		if filter.Range.To >= filter.Range.From {
			stmt += " AND time <= ?"
			args = append(args, filter.Range.To)
		}
	}
	if len(filter.Accounts) > 0 {
		stmt += " AND account IN (" + placeholders(len(filter.Accounts)) + ")"
		for _, a := range filter.Accounts {
			args = append(args, a.Bytes())
		}
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (" + placeholders(len(filter.Kinds)) + ")"
		for _, k := range filter.Kinds {
			args = append(args, k)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return edb.query(ctx, stmt, args...)
}

func (edb *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	start := metricQueryStart()
	defer metricQueryDone(start)

	rows, err := edb.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			ev      Event
			topic   []byte
			account []byte
			amount  []byte
		)
		if err := rows.Scan(&ev.Seq, &ev.Time, &ev.Kind, &topic, &account, &amount); err != nil {
			return nil, err
		}
		ev.Topic = jar.BytesToBytes32(topic)
		ev.Account = jar.BytesToAddress(account)
		ev.Amount = new(uint256.Int).SetBytes(amount)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
