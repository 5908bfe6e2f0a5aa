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
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrCertificateMissing = errors.New("certificate missing")
	ErrCertificateInvalid = errors.New("certificate invalid")
	ErrRootNotTrusted     = errors.New("root certificate not trusted")
)

// CertFingerprint is the hex SHA-256 of the certificate's SubjectPublicKeyInfo.
// Envelope pubkey fields and JWT kid headers use the same form, so a declared
// signing key can be compared against a validated certificate directly.
func CertFingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return hex.EncodeToString(sum[:])
}

// Verifier validates certificate chains for the messaging grid. The zero
// value trusts nothing; roots are supplied at construction or per call.
type Verifier struct {
	roots *x509.CertPool
	now   func() time.Time
}

// NewVerifier creates a verifier trusting the given grid root certificates.
func NewVerifier(roots ...*x509.Certificate) *Verifier {
	pool := x509.NewCertPool()
	for _, root := range roots {
		pool.AddCert(root)
	}
	return &Verifier{roots: pool, now: time.Now}
}

// ParseCertificatePEM decodes a single PEM certificate block.
func ParseCertificatePEM(pemData string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%w: no certificate PEM block", ErrCertificateInvalid)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateInvalid, err)
	}
	return cert, nil
}

// LoadRootsFile reads grid root certificates from a PEM bundle on disk.
func LoadRootsFile(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roots %s: %w", path, err)
	}
	var roots []*x509.Certificate
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertificateInvalid, err)
		}
		roots = append(roots, cert)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no certificates in %s", ErrCertificateMissing, path)
	}
	return roots, nil
}

// LoadRoot parses and validates a caller-asserted root-of-trust certificate.
// The root must be a self-signed CA inside its validity window.
func (v *Verifier) LoadRoot(pemData string) (*x509.Certificate, error) {
	cert, err := ParseCertificatePEM(pemData)
	if err != nil {
		return nil, err
	}
	if !cert.IsCA {
		return nil, fmt.Errorf("%w: not a CA certificate", ErrRootNotTrusted)
	}
	if err := cert.CheckSignatureFrom(cert); err != nil {
		return nil, fmt.Errorf("%w: not self-signed: %v", ErrRootNotTrusted, err)
	}
	now := v.now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return nil, fmt.Errorf("%w: outside validity window", ErrRootNotTrusted)
	}
	return cert, nil
}

// VerifyChain validates a PEM chain (leaf first) against the given root, or
// against the verifier's configured roots when root is nil. Returns the leaf.
func (v *Verifier) VerifyChain(chainPEM []string, root *x509.Certificate) (*x509.Certificate, error) {
	if len(chainPEM) == 0 {
		return nil, ErrCertificateMissing
	}

	certs := make([]*x509.Certificate, 0, len(chainPEM))
	for _, pemData := range chainPEM {
		cert, err := ParseCertificatePEM(pemData)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	roots := v.roots
	if root != nil {
		roots = x509.NewCertPool()
		roots.AddCert(root)
	}
	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	leaf := certs[0]
	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   v.now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateInvalid, err)
	}
	return leaf, nil
}

// VerifyIdentity validates a chain against the verifier's configured grid
// roots and extracts the identity attributes of the leaf.
func (v *Verifier) VerifyIdentity(chainPEM []string) (*CertIdentity, error) {
	leaf, err := v.VerifyChain(chainPEM, nil)
	if err != nil {
		return nil, err
	}
	return NewIdentity(leaf)
}
