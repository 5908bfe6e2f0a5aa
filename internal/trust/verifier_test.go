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

func TestVerifyChain_AgainstExplicitRoot(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	leaf, _, err := authority.Issue(LeafSpec{CommonName: "worker"})
	require.NoError(t, err)

	v := NewVerifier()
	got, err := v.VerifyChain([]string{EncodeCertificatePEM(leaf)}, authority.Certificate())
	require.NoError(t, err)
	assert.Equal(t, leaf.Raw, got.Raw)
}

func TestVerifyChain_WrongRoot(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	stranger, err := NewAuthority("stranger", 24*time.Hour)
	require.NoError(t, err)
	leaf, _, err := authority.Issue(LeafSpec{CommonName: "worker"})
	require.NoError(t, err)

	v := NewVerifier()
	_, err = v.VerifyChain([]string{EncodeCertificatePEM(leaf)}, stranger.Certificate())
	assert.ErrorIs(t, err, ErrCertificateInvalid)
}

func TestVerifyChain_EmptyChain(t *testing.T) {
	v := NewVerifier()
	_, err := v.VerifyChain(nil, nil)
	assert.ErrorIs(t, err, ErrCertificateMissing)
}

func TestVerifyIdentity_ConfiguredRoots(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	leaf, _, err := authority.Issue(LeafSpec{
		CommonName:    "worker",
		Roles:         []string{RoleCore},
		ExchangeLevel: L4Secure,
	})
	require.NoError(t, err)

	v := NewVerifier(authority.Certificate())
	identity, err := v.VerifyIdentity([]string{EncodeCertificatePEM(leaf)})
	require.NoError(t, err)
	assert.True(t, identity.HasRole(RoleCore))
}

func TestLoadRoot(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)

	v := NewVerifier()
	root, err := v.LoadRoot(authority.CertificatePEM())
	require.NoError(t, err)
	assert.Equal(t, authority.Certificate().Raw, root.Raw)

	// A leaf is not an acceptable root of trust.
	leaf, _, err := authority.Issue(LeafSpec{CommonName: "worker"})
	require.NoError(t, err)
	_, err = v.LoadRoot(EncodeCertificatePEM(leaf))
	assert.ErrorIs(t, err, ErrRootNotTrusted)
}

func TestLoadRoot_ExpiredWindow(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)

	v := NewVerifier()
	v.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = v.LoadRoot(authority.CertificatePEM())
	assert.ErrorIs(t, err, ErrRootNotTrusted)
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	leaf, key, err := authority.Issue(LeafSpec{CommonName: "worker"})
	require.NoError(t, err)
	identity, err := NewIdentity(leaf)
	require.NoError(t, err)

	plaintext := []byte(`{"ok":true,"jwt_readonly":"a","jwt_readwrite":"b"}`)
	sealed, err := Encrypt(identity.PublicKey(), plaintext)
	require.NoError(t, err)
	assert.True(t, sealed.Encrypted)
	assert.NotContains(t, sealed.Ciphertext, "jwt_readonly")

	opened, err := Decrypt(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestDecrypt_WrongKey(t *testing.T) {
	authority, err := NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	leaf, _, err := authority.Issue(LeafSpec{CommonName: "worker"})
	require.NoError(t, err)
	identity, err := NewIdentity(leaf)
	require.NoError(t, err)
	_, otherKey, err := authority.Issue(LeafSpec{CommonName: "other"})
	require.NoError(t, err)

	sealed, err := Encrypt(identity.PublicKey(), []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(otherKey, sealed)
	assert.Error(t, err)
}
