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

// Package authz implements the coarse admission gate over verified grid
// identities. The gate is a pure predicate: no I/O, no side effects. Handlers
// re-check at finer granularity where their requirement is stricter than the
// category default.
package authz

import (
	"fmt"

	"github.com/hostgrid/hostgrid/internal/trust"
)

// Category classifies an action for admission purposes. Each category has a
// minimum exchange level.
type Category string

const (
	// CategoryTenantWrite covers commands that mutate hosting configuration.
	CategoryTenantWrite Category = "tenant-write"
	// CategoryTenantRead covers queries over hosting configuration.
	CategoryTenantRead Category = "tenant-read"
	// CategoryCredential covers credential issuance; the real gate there is
	// the certificate handshake, so the level floor is the lowest tier.
	CategoryCredential Category = "credential"
)

var categoryMinLevel = map[Category]trust.Level{
	CategoryTenantWrite: trust.L3Protected,
	CategoryTenantRead:  trust.L1Public,
	CategoryCredential:  trust.L1Public,
}

// MinLevel returns the exchange-level floor for a category.
func (c Category) MinLevel() trust.Level {
	if level, ok := categoryMinLevel[c]; ok {
		return level
	}
	return trust.L4Secure
}

// Context is the admission result attached to a message for its handlers.
type Context struct {
	// UserID is set when admission happened through the user rule.
	UserID string
	// Owner is set when admission happened through the global delegation.
	Owner bool
	// Level is the identity's exchange level, when asserted.
	Level trust.Level
}

// UnauthorizedError reports a rejected identity with a printable summary.
type UnauthorizedError struct {
	Identity string
	Category Category
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("identity %q not authorized for %s", e.Identity, e.Category)
}

// Authorize admits an identity for an action category. Rules, in precedence:
//
//  1. a recognized user role together with a user id admits as a user-scoped
//     context;
//  2. an exchange level at or above the category minimum admits;
//  3. the global ownership delegation admits regardless of exchange level.
//
// Anything else is rejected.
func Authorize(identity trust.Identity, category Category) (*Context, error) {
	level, hasLevel := identity.ExchangeLevel()

	if identity.HasRole(trust.RoleUser) && identity.UserID() != "" {
		return &Context{UserID: identity.UserID(), Level: level}, nil
	}

	if hasLevel && level.AtLeast(category.MinLevel()) {
		return &Context{Level: level}, nil
	}

	if identity.HasDelegation(trust.DelegationOwner) {
		return &Context{Owner: true, Level: level}, nil
	}

	return nil, &UnauthorizedError{Identity: identity.Subject(), Category: category}
}
