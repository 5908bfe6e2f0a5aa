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

package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity_ExtractsAttributes(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)

	leaf, _, err := authority.Issue(LeafSpec{
		CommonName:    "worker-1",
		Roles:         []string{RoleCore, "monitor"},
		Domains:       []string{"hosting"},
		ExchangeLevel: L3Protected,
		UserID:        "user-42",
		Delegations:   []string{DelegationOwner},
	})
	require.NoError(t, err)

	identity, err := NewIdentity(leaf)
	require.NoError(t, err)

	assert.Equal(t, []string{RoleCore, "monitor"}, identity.Roles())
	assert.True(t, identity.HasRole(RoleCore))
	assert.False(t, identity.HasRole("admin"))

	level, ok := identity.ExchangeLevel()
	require.True(t, ok)
	assert.Equal(t, L3Protected, level)

	assert.Equal(t, authority.TenantID(), identity.TenantID())
	assert.Equal(t, "user-42", identity.UserID())
	assert.True(t, identity.HasDelegation(DelegationOwner))
	assert.Equal(t, []string{"hosting"}, identity.Domains())
	assert.Equal(t, CertFingerprint(leaf), identity.Fingerprint())
	assert.Contains(t, identity.Subject(), "worker-1")
}

func TestNewIdentity_NoAttributes(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)

	leaf, _, err := authority.Issue(LeafSpec{CommonName: "bare"})
	require.NoError(t, err)

	identity, err := NewIdentity(leaf)
	require.NoError(t, err)

	_, ok := identity.ExchangeLevel()
	assert.False(t, ok)
	assert.Empty(t, identity.Roles())
	assert.Empty(t, identity.UserID())
	assert.False(t, identity.HasDelegation(DelegationOwner))
}

func TestParseLevel(t *testing.T) {
	for _, level := range []Level{L1Public, L2Private, L3Protected, L4Secure} {
		parsed, err := ParseLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := ParseLevel("5.topsecret")
	assert.Error(t, err)
}

func TestLevelAtLeast(t *testing.T) {
	assert.True(t, L4Secure.AtLeast(L1Public))
	assert.True(t, L3Protected.AtLeast(L3Protected))
	assert.False(t, L2Private.AtLeast(L3Protected))
}
