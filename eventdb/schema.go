// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	time INTEGER NOT NULL,
	kind TEXT NOT NULL,
	topic BLOB(32) NOT NULL,
	account BLOB(20) NOT NULL,
	amount BLOB(32) NOT NULL
);

CREATE INDEX IF NOT EXISTS event_time ON event(time);
CREATE INDEX IF NOT EXISTS event_account ON event(account);
CREATE INDEX IF NOT EXISTS event_kind ON event(kind);
`
