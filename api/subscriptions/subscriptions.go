// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/api/events"
	"github.com/jarledger/jard/api/utils"
	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10

	subscriptionBuffer = 64
)

// Subscriptions streams committed ledger events over websocket.
type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

type eventFilter struct {
	account *jar.Address
	kind    rewards.EventKind
}

func parseEventFilter(req *http.Request) (*eventFilter, error) {
	var f eventFilter
	query := req.URL.Query()
	if s := query.Get("account"); s != "" {
		addr, err := jar.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "account")
		}
		f.account = &addr
	}
	if s := query.Get("kind"); s != "" {
		f.kind = rewards.EventKind(s)
		if !f.kind.Valid() {
			return nil, errors.Errorf("kind: unknown %q", s)
		}
	}
	return &f, nil
}

func (f *eventFilter) match(ev *eventdb.Event) bool {
	if f.account != nil && *f.account != ev.Account {
		return false
	}
	if f.kind != "" && string(f.kind) != ev.Kind {
		return false
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvent(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req)
	if err != nil {
		return utils.BadRequest(err)
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	ch := make(chan *eventdb.Event, subscriptionBuffer)
	sub := s.rt.SubscribeEvent(ch)
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-ch:
			if !filter.match(ev) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(events.Convert(ev)); err != nil {
				logger.Debug("write failed", "err", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-sub.Err():
			// runtime closed
			s.closeConn(conn)
			return nil
		case <-closed:
			return nil
		case <-s.done:
			s.closeConn(conn)
			return nil
		}
	}
}

func (s *Subscriptions) closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("failed to send close message", "err", err)
	}
}

// Close disconnects all subscribers.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvent))
}
