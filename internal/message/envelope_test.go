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

package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostgrid/hostgrid/internal/trust"
)

func newTestSigner(t *testing.T) *trust.Signer {
	t.Helper()
	authority, err := trust.NewAuthority("grid-root", 24*time.Hour)
	require.NoError(t, err)
	leaf, key, err := authority.Issue(trust.LeafSpec{
		CommonName:    "sender",
		Roles:         []string{trust.RoleCore},
		ExchangeLevel: trust.L4Secure,
	})
	require.NoError(t, err)
	return trust.NewSigner(leaf, key)
}

func TestSealAndVerify(t *testing.T) {
	signer := newTestSigner(t)

	env, err := Seal(signer, KindCommand, &Routing{Domain: Domain, Action: "save-client"},
		map[string]string{"tenant_id": "abc"}, time.Now().Unix())
	require.NoError(t, err)

	require.NoError(t, env.VerifySignature())
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, KindCommand, env.Kind)
	assert.NotEmpty(t, env.Certificate)

	fp, err := env.SignerFingerprint()
	require.NoError(t, err)
	assert.Equal(t, signer.Fingerprint(), fp)

	var content map[string]string
	require.NoError(t, json.Unmarshal(env.Content, &content))
	assert.Equal(t, "abc", content["tenant_id"])
}

func TestVerifySignature_TamperedContent(t *testing.T) {
	signer := newTestSigner(t)

	env, err := Seal(signer, KindRequest, &Routing{Domain: Domain, Action: "list-clients"},
		map[string]string{"a": "1"}, time.Now().Unix())
	require.NoError(t, err)

	env.Content = json.RawMessage(`{"a":"2"}`)
	assert.ErrorIs(t, env.VerifySignature(), ErrSignatureInvalid)
}

func TestVerifySignature_TamperedRouting(t *testing.T) {
	signer := newTestSigner(t)

	env, err := Seal(signer, KindRequest, &Routing{Domain: Domain, Action: "list-clients"},
		nil, time.Now().Unix())
	require.NoError(t, err)

	env.Routing.Action = "issue-token"
	assert.ErrorIs(t, env.VerifySignature(), ErrSignatureInvalid)
}

func TestSignerKey_Garbage(t *testing.T) {
	env := &Envelope{PubKey: "not base64!"}
	_, err := env.SignerKey()
	assert.ErrorIs(t, err, ErrEnvelopeInvalid)
}
