// Copyright 2026 The HostGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hostgrid/hostgrid/internal/authz"
	"github.com/hostgrid/hostgrid/internal/message"
	"github.com/hostgrid/hostgrid/internal/observability/logger"
)

// ErrUnknownAction marks an action absent from both dispatch tables. The
// transport drops such messages after logging instead of answering the
// caller.
var ErrUnknownAction = errors.New("unknown action")

// Handler processes an admitted message. A nil result with a nil error means
// the handler produced no response body (acknowledgment is transport policy).
type Handler func(ctx context.Context, authCtx *authz.Context, msg *message.Incoming) (any, error)

type entry struct {
	category authz.Category
	handler  Handler
}

// Dispatcher routes verified messages to handlers. Commands and requests use
// independent tables; registration happens once at startup, so lookups need
// no locking. Handlers share no mutable state.
type Dispatcher struct {
	commands map[string]entry
	requests map[string]entry
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		commands: make(map[string]entry),
		requests: make(map[string]entry),
	}
}

// HandleCommand registers a command action with its admission category.
func (d *Dispatcher) HandleCommand(action string, category authz.Category, handler Handler) {
	d.commands[action] = entry{category: category, handler: handler}
}

// HandleRequest registers a request action with its admission category.
func (d *Dispatcher) HandleRequest(action string, category authz.Category, handler Handler) {
	d.requests[action] = entry{category: category, handler: handler}
}

// Dispatch admits and routes one message. Unknown actions are logged and
// surface as ErrUnknownAction; admission failures surface as the gate's
// error. Both are terminal for the message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *message.Incoming) (any, error) {
	var table map[string]entry
	switch msg.Kind {
	case message.KindCommand:
		table = d.commands
	case message.KindRequest:
		table = d.requests
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownAction, msg.Kind)
	}

	e, ok := table[msg.Action]
	if !ok {
		slog.WarnContext(ctx, "action not mapped, message dropped",
			logger.Component("dispatch"),
			logger.Action(msg.Action),
			logger.Kind(string(msg.Kind)),
			logger.Fingerprint(msg.Identity.Fingerprint()),
		)
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, msg.Action)
	}

	authCtx, err := authz.Authorize(msg.Identity, e.category)
	if err != nil {
		return nil, err
	}

	return e.handler(ctx, authCtx, msg)
}
