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

func TestComputeTenantID_Deterministic(t *testing.T) {
	authority, err := NewAuthority("tenant-a", 24*time.Hour)
	require.NoError(t, err)

	id := ComputeTenantID(authority.Certificate())
	assert.Equal(t, id, ComputeTenantID(authority.Certificate()))

	other, err := NewAuthority("tenant-b", 24*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, id, ComputeTenantID(other.Certificate()))
}

func TestParseTenantID_RecoversExpiration(t *testing.T) {
	authority, err := NewAuthority("tenant-a", 24*time.Hour)
	require.NoError(t, err)

	info, err := ParseTenantID(ComputeTenantID(authority.Certificate()))
	require.NoError(t, err)

	assert.Equal(t, byte(tenantIDVersion), info.Version)
	// The embedded expiration is truncated to kilosecond resolution.
	notAfter := authority.Certificate().NotAfter
	assert.WithinDuration(t, notAfter, info.Expiration, 1000*time.Second)
}

func TestParseTenantID_Invalid(t *testing.T) {
	cases := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"not base64", "!!!"},
		{"wrong length", "AAEC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTenantID(tc.id)
			assert.ErrorIs(t, err, ErrTenantIDInvalid)
		})
	}
}

func TestCheckTenantID_Expired(t *testing.T) {
	authority, err := NewAuthority("tenant-a", 24*time.Hour)
	require.NoError(t, err)
	id := ComputeTenantID(authority.Certificate())

	_, err = CheckTenantID(id, time.Now())
	assert.NoError(t, err)

	_, err = CheckTenantID(id, time.Now().Add(48*time.Hour))
	assert.ErrorIs(t, err, ErrIdentityExpired)
}
