// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/api/utils"
	"github.com/jarledger/jard/builtin"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/runtime"
	"github.com/jarledger/jard/state"
)

type Balance struct {
	Token       jar.Address `json:"token"`
	Address     jar.Address `json:"address"`
	Balance     *jar.Amount `json:"balance"`
	TotalSupply *jar.Amount `json:"totalSupply"`
}

// Tokens serves the stake and reward token balances.
type Tokens struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Tokens {
	return &Tokens{rt}
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	contract, ok := builtin.Token(mux.Vars(req)["token"])
	if !ok {
		return utils.NotFound(errors.New("token: unknown"))
	}
	addr, err := jar.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}

	out := &Balance{Token: contract.Address, Address: addr}
	if err := t.rt.View(func(st *state.State, _ uint64) error {
		token := contract.WithState(st)
		bal, err := token.BalanceOf(addr)
		if err != nil {
			return err
		}
		supply, err := token.TotalSupply()
		if err != nil {
			return err
		}
		out.Balance = jar.NewAmount(bal)
		out.TotalSupply = jar.NewAmount(supply)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{token}/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
}
