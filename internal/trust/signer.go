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
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// Signer is the process-scoped signing context: the service's own certificate
// and private key. It is read-only after construction and injected into the
// components that mint or encrypt messages.
type Signer struct {
	cert        *x509.Certificate
	key         *ecdsa.PrivateKey
	fingerprint string
	chainPEM    []string
}

// NewSigner builds a signing context from an in-memory certificate and key.
func NewSigner(cert *x509.Certificate, key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		cert:        cert,
		key:         key,
		fingerprint: CertFingerprint(cert),
		chainPEM:    []string{EncodeCertificatePEM(cert)},
	}
}

// LoadSigner reads the service certificate chain and EC private key from disk.
func LoadSigner(certPath, keyPath string) (*Signer, error) {
	certData, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	var (
		certs    []*x509.Certificate
		chainPEM []string
	)
	for block, rest := pem.Decode(certData); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		certs = append(certs, cert)
		chainPEM = append(chainPEM, string(pem.EncodeToMemory(block)))
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("parse certificate: %w", ErrCertificateMissing)
	}

	key, err := parseECKeyPEM(keyData)
	if err != nil {
		return nil, err
	}

	return &Signer{
		cert:        certs[0],
		key:         key,
		fingerprint: CertFingerprint(certs[0]),
		chainPEM:    chainPEM,
	}, nil
}

// Certificate returns the service's own leaf certificate.
func (s *Signer) Certificate() *x509.Certificate { return s.cert }

// Key returns the service's private signing key.
func (s *Signer) Key() *ecdsa.PrivateKey { return s.key }

// Fingerprint identifies the signing key; it doubles as JWT kid.
func (s *Signer) Fingerprint() string { return s.fingerprint }

// ChainPEM returns the PEM chain for outbound envelopes, leaf first.
func (s *Signer) ChainPEM() []string { return s.chainPEM }

// Sign produces an ASN.1 ECDSA signature over a precomputed digest.
func (s *Signer) Sign(digest []byte) ([]byte, error) {
	return ecdsa.SignASN1(rand.Reader, s.key, digest)
}

func parseECKeyPEM(keyData []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("parse private key: no PEM block")
	}
	switch block.Type {
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("parse private key: unsupported type %T", key)
		}
		return ecKey, nil
	default:
		return nil, fmt.Errorf("parse private key: unexpected PEM block %q", block.Type)
	}
}

// EncodeCertificatePEM renders a certificate as a PEM string.
func EncodeCertificatePEM(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))
}

// EncodeKeyPEM renders an EC private key as a PEM string.
func EncodeKeyPEM(key *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})), nil
}
