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

package http

import (
	"context"

	"github.com/hostgrid/hostgrid/internal/authz"
	"github.com/hostgrid/hostgrid/internal/dispatch"
	"github.com/hostgrid/hostgrid/internal/hosting"
	"github.com/hostgrid/hostgrid/internal/message"
	"github.com/hostgrid/hostgrid/internal/token"
	"github.com/hostgrid/hostgrid/internal/trust"
)

// Hosting domain actions.
const (
	ActionSaveClient  = "save-client"
	ActionListClients = "list-clients"
	ActionIssueToken  = "issue-token"
)

// RegisterActions wires the hosting domain's dispatch tables.
func RegisterActions(d *dispatch.Dispatcher, hostingSvc *hosting.Service, issuer *token.Issuer) {
	d.HandleCommand(ActionSaveClient, authz.CategoryTenantWrite,
		func(ctx context.Context, _ *authz.Context, msg *message.Incoming) (any, error) {
			if err := hostingSvc.SaveClient(ctx, msg.Payload); err != nil {
				return nil, err
			}
			return nil, nil
		})

	// Listing exposes every tenant's configuration, so the handler demands a
	// protected exchange level even from identities the gate admitted through
	// the user or delegation rules.
	d.HandleRequest(ActionListClients, authz.CategoryTenantRead,
		func(ctx context.Context, _ *authz.Context, msg *message.Incoming) (any, error) {
			level, ok := msg.Identity.ExchangeLevel()
			if !ok || !level.AtLeast(trust.L3Protected) {
				return nil, &authz.UnauthorizedError{
					Identity: msg.Identity.Subject(),
					Category: authz.CategoryTenantRead,
				}
			}
			return hostingSvc.ListClients(ctx)
		})

	d.HandleRequest(ActionIssueToken, authz.CategoryCredential,
		func(ctx context.Context, _ *authz.Context, msg *message.Incoming) (any, error) {
			return issuer.IssueTokens(ctx, msg.Payload)
		})
}
