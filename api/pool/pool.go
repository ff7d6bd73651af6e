// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/api/utils"
	"github.com/jarledger/jard/builtin"
	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/runtime"
	"github.com/jarledger/jard/state"
)

// Pool serves the ledger state and its operations.
type Pool struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pool {
	return &Pool{rt}
}

// ledgerError maps ledger rejections to client errors. Anything else stays a server error.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, rewards.ErrUnauthorized):
		return utils.Forbidden(err)
	case rewards.IsRejection(err), errors.Is(err, runtime.ErrUnknownOp):
		return utils.BadRequest(err)
	}
	return err
}

func (p *Pool) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	var out *PoolState
	if err := p.rt.View(func(st *state.State, now uint64) error {
		pool, err := builtin.Rewards.WithState(st).Pool()
		if err != nil {
			return err
		}
		out = convertPool(pool, now)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (p *Pool) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := jar.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var out *AccountState
	if err := p.rt.View(func(st *state.State, now uint64) error {
		ledger := builtin.Rewards.WithState(st)
		acc, err := ledger.Account(addr)
		if err != nil {
			return err
		}
		earned, err := ledger.Earned(addr, now)
		if err != nil {
			return err
		}
		out = convertAccount(addr, acc, earned, now)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (p *Pool) handleOp(w http.ResponseWriter, req *http.Request) error {
	op := runtime.Op(mux.Vars(req)["op"])
	if !op.Valid() {
		return utils.NotFound(errors.Errorf("unknown op %q", op))
	}

	var body OpRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Caller == nil {
		return utils.BadRequest(errors.New("caller: required"))
	}

	r := &runtime.Request{Op: op, Caller: *body.Caller}
	switch op {
	case runtime.OpDeposit, runtime.OpWithdraw, runtime.OpReplenish:
		if body.Amount == nil {
			return utils.BadRequest(errors.New("amount: required"))
		}
		r.Amount = body.Amount.Int()
	case runtime.OpInitialize, runtime.OpDuration:
		if body.Duration == nil {
			return utils.BadRequest(errors.New("duration: required"))
		}
		r.Duration = uint64(*body.Duration)
		if op == runtime.OpInitialize && body.ExitDelay != nil {
			r.ExitDelay = uint64(*body.ExitDelay)
		}
	}

	res, err := p.rt.Execute(req.Context(), r)
	if err != nil {
		return ledgerError(err)
	}
	return utils.WriteJSON(w, convertResult(res))
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /pool/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
	sub.Path("/{op}").
		Methods(http.MethodPost).
		Name("POST /pool/{op}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleOp))
}
