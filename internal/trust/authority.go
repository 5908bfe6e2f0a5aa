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
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Authority is a root-of-trust certificate authority able to issue leaf
// certificates carrying grid identity attributes. Production tenants bring
// their own roots; this implementation backs the certgen tool and tests.
type Authority struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

// LeafSpec describes the identity attributes of a leaf certificate.
type LeafSpec struct {
	CommonName    string
	Roles         []string
	Domains       []string
	ExchangeLevel Level
	UserID        string
	Delegations   []string
	Validity      time.Duration
}

// NewAuthority creates a self-signed P-256 root valid for the given duration.
func NewAuthority(name string, validity time.Duration) (*Authority, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: newSerial(),
		Subject: pkix.Name{
			Organization: []string{"HostGrid"},
			CommonName:   name,
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(validity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}

	return &Authority{cert: cert, key: key}, nil
}

// Certificate returns the root certificate.
func (a *Authority) Certificate() *x509.Certificate { return a.cert }

// CertificatePEM returns the root certificate in PEM form.
func (a *Authority) CertificatePEM() string { return EncodeCertificatePEM(a.cert) }

// Key returns the root private key.
func (a *Authority) Key() *ecdsa.PrivateKey { return a.key }

// TenantID derives the tenant id anchored at this root.
func (a *Authority) TenantID() string { return ComputeTenantID(a.cert) }

// Issue signs a leaf certificate carrying the spec's identity attributes.
// The tenant id rides in the Subject Organization field.
func (a *Authority) Issue(spec LeafSpec) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	validity := spec.Validity
	if validity <= 0 {
		validity = 90 * 24 * time.Hour
	}

	template := &x509.Certificate{
		SerialNumber: newSerial(),
		Subject: pkix.Name{
			Organization: []string{a.TenantID()},
			CommonName:   spec.CommonName,
		},
		NotBefore:       time.Now().Add(-time.Hour),
		NotAfter:        time.Now().Add(validity),
		KeyUsage:        x509.KeyUsageDigitalSignature,
		ExtKeyUsage:     []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		ExtraExtensions: identityExtensions(spec),
	}

	der, err := x509.CreateCertificate(rand.Reader, template, a.cert, &key.PublicKey, a.key)
	if err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, err
	}
	return cert, key, nil
}

func identityExtensions(spec LeafSpec) []pkix.Extension {
	var exts []pkix.Extension
	add := func(id asn1.ObjectIdentifier, value string) {
		if value == "" {
			return
		}
		exts = append(exts, pkix.Extension{Id: id, Value: []byte(value)})
	}

	if spec.ExchangeLevel != 0 {
		add(oidExchangeLevel, spec.ExchangeLevel.String())
	}
	add(oidRoles, strings.Join(spec.Roles, ","))
	add(oidDomains, strings.Join(spec.Domains, ","))
	add(oidUserID, spec.UserID)
	add(oidDelegations, strings.Join(spec.Delegations, ","))
	return exts
}

func newSerial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		panic(fmt.Sprintf("serial generation failed: %v", err))
	}
	return serial
}
