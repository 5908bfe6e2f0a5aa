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
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/hostgrid/hostgrid/internal/trust"
)

// Kind distinguishes the two dispatchable message classes of the grid.
type Kind string

const (
	KindCommand Kind = "command"
	KindRequest Kind = "request"
)

var (
	ErrSignatureInvalid = errors.New("envelope signature invalid")
	ErrEnvelopeInvalid  = errors.New("envelope is not well formed")
)

// Routing names the destination domain and action of an envelope.
type Routing struct {
	Domain string `json:"domain"`
	Action string `json:"action"`
}

// Envelope is a signed grid message. PubKey is the base64 DER encoding of the
// signer's public key; Signature covers the canonical signable bytes. The
// certificate chain (leaf first) binds the signing key to an identity, and
// Root optionally carries the caller's asserted root-of-trust PEM.
type Envelope struct {
	ID          string          `json:"id"`
	PubKey      string          `json:"pubkey"`
	Timestamp   int64           `json:"timestamp"`
	Kind        Kind            `json:"kind"`
	Routing     *Routing        `json:"routing,omitempty"`
	Content     json.RawMessage `json:"content"`
	Signature   string          `json:"sig"`
	Certificate []string        `json:"certificate,omitempty"`
	Root        string          `json:"root,omitempty"`
}

// signableDigest is the SHA-256 over the canonical field ordering. The
// certificate chain is deliberately excluded: the binding between key and
// certificate is checked separately via fingerprint comparison.
func (e *Envelope) signableDigest() [32]byte {
	h := sha256.New()
	h.Write([]byte(e.PubKey))
	h.Write([]byte("\n"))
	h.Write([]byte(strconv.FormatInt(e.Timestamp, 10)))
	h.Write([]byte("\n"))
	h.Write([]byte(e.Kind))
	h.Write([]byte("\n"))
	if e.Routing != nil {
		h.Write([]byte(e.Routing.Domain))
		h.Write([]byte("."))
		h.Write([]byte(e.Routing.Action))
	}
	h.Write([]byte("\n"))
	h.Write(e.Content)

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// SignerKey decodes the envelope's declared public key.
func (e *Envelope) SignerKey() (*ecdsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(e.PubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: pubkey: %v", ErrEnvelopeInvalid, err)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: pubkey: %v", ErrEnvelopeInvalid, err)
	}
	key, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrEnvelopeInvalid, pub)
	}
	return key, nil
}

// SignerFingerprint is the hex SHA-256 of the declared public key, comparable
// with certificate fingerprints.
func (e *Envelope) SignerFingerprint() (string, error) {
	der, err := base64.StdEncoding.DecodeString(e.PubKey)
	if err != nil {
		return "", fmt.Errorf("%w: pubkey: %v", ErrEnvelopeInvalid, err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

// VerifySignature checks the envelope signature against its declared key.
// It does not validate the certificate chain.
func (e *Envelope) VerifySignature() error {
	key, err := e.SignerKey()
	if err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(e.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	digest := e.signableDigest()
	if !ecdsa.VerifyASN1(key, digest[:], sig) {
		return ErrSignatureInvalid
	}
	return nil
}

// Seal signs content into a new envelope using the given signing context.
func Seal(signer *trust.Signer, kind Kind, routing *Routing, content any, timestamp int64) (*Envelope, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&signer.Key().PublicKey)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		PubKey:      base64.StdEncoding.EncodeToString(pubDER),
		Timestamp:   timestamp,
		Kind:        kind,
		Routing:     routing,
		Content:     raw,
		Certificate: signer.ChainPEM(),
	}
	digest := env.signableDigest()
	env.ID = hex.EncodeToString(digest[:])
	sig, err := signer.Sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign envelope: %w", err)
	}
	env.Signature = base64.StdEncoding.EncodeToString(sig)
	return env, nil
}
