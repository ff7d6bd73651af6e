// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the ledger storage.
// It follows the flow as below:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv bulk ]
//	          |
//	    [ read cache ]
//	          |
//	     [ kv store ]
//
// Every value is addressed by (contract address, 32 bytes key) and holds an rlp encoded record.
// Nothing reaches the kv store until a stage is committed.
package state
