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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostgrid/hostgrid/internal/authz"
	"github.com/hostgrid/hostgrid/internal/message"
	"github.com/hostgrid/hostgrid/internal/trust"
)

func newIdentity(t *testing.T, spec trust.LeafSpec) trust.Identity {
	t.Helper()
	authority, err := trust.NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	leaf, _, err := authority.Issue(spec)
	require.NoError(t, err)
	identity, err := trust.NewIdentity(leaf)
	require.NoError(t, err)
	return identity
}

func TestDispatch_RoutesToRegisteredHandler(t *testing.T) {
	d := New()
	var got *authz.Context
	d.HandleCommand("save-client", authz.CategoryTenantWrite,
		func(ctx context.Context, authCtx *authz.Context, msg *message.Incoming) (any, error) {
			got = authCtx
			return "done", nil
		})

	identity := newIdentity(t, trust.LeafSpec{CommonName: "core", ExchangeLevel: trust.L3Protected})
	result, err := d.Dispatch(context.Background(), &message.Incoming{
		Kind:     message.KindCommand,
		Action:   "save-client",
		Identity: identity,
	})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	require.NotNil(t, got)
	assert.Equal(t, trust.L3Protected, got.Level)
}

func TestDispatch_UnknownActionDropped(t *testing.T) {
	d := New()
	identity := newIdentity(t, trust.LeafSpec{CommonName: "core", ExchangeLevel: trust.L4Secure})

	_, err := d.Dispatch(context.Background(), &message.Incoming{
		Kind:     message.KindCommand,
		Action:   "no-such-action",
		Identity: identity,
	})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDispatch_TablesAreIndependent(t *testing.T) {
	d := New()
	d.HandleRequest("list-clients", authz.CategoryTenantRead,
		func(ctx context.Context, authCtx *authz.Context, msg *message.Incoming) (any, error) {
			return nil, nil
		})

	identity := newIdentity(t, trust.LeafSpec{CommonName: "core", ExchangeLevel: trust.L4Secure})

	// Registered as a request; the same action name is unknown as a command.
	_, err := d.Dispatch(context.Background(), &message.Incoming{
		Kind:     message.KindCommand,
		Action:   "list-clients",
		Identity: identity,
	})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDispatch_UnknownKind(t *testing.T) {
	d := New()
	identity := newIdentity(t, trust.LeafSpec{CommonName: "core", ExchangeLevel: trust.L4Secure})

	_, err := d.Dispatch(context.Background(), &message.Incoming{
		Kind:     message.Kind("event"),
		Action:   "save-client",
		Identity: identity,
	})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDispatch_GateRejectsBeforeHandler(t *testing.T) {
	d := New()
	called := false
	d.HandleCommand("save-client", authz.CategoryTenantWrite,
		func(ctx context.Context, authCtx *authz.Context, msg *message.Incoming) (any, error) {
			called = true
			return nil, nil
		})

	identity := newIdentity(t, trust.LeafSpec{CommonName: "weak", ExchangeLevel: trust.L1Public})
	_, err := d.Dispatch(context.Background(), &message.Incoming{
		Kind:     message.KindCommand,
		Action:   "save-client",
		Identity: identity,
	})

	var unauthorized *authz.UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
	assert.False(t, called)
}
