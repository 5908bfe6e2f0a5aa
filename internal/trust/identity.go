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
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"strings"
)

// Certificate attributes are carried in private-arc extensions on the leaf.
// The tenant id rides in the Subject Organization field.
var (
	oidExchangeLevel = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 58952, 1, 1}
	oidRoles         = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 58952, 1, 2}
	oidDomains       = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 58952, 1, 3}
	oidUserID        = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 58952, 1, 4}
	oidDelegations   = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 58952, 1, 5}
)

// Well-known role and delegation values.
const (
	RoleCore = "core"
	RoleUser = "user"

	DelegationOwner = "owner"
)

// Identity is the capability surface exposed by a verified certificate.
// The domain core consumes identity attributes through this interface only;
// it never inspects certificates directly.
type Identity interface {
	// Roles returns the role set asserted by the certificate.
	Roles() []string
	// HasRole reports whether the identity carries the given role.
	HasRole(role string) bool
	// ExchangeLevel returns the security exchange tier, if asserted.
	ExchangeLevel() (Level, bool)
	// TenantID returns the tenant the certificate was issued under, or "".
	TenantID() string
	// UserID returns the end-user id bound to the certificate, or "".
	UserID() string
	// HasDelegation reports whether the certificate carries the named
	// global delegation claim.
	HasDelegation(delegation string) bool
	// Fingerprint is the hex SHA-256 of the certificate's public key info.
	Fingerprint() string
	// PublicKey returns the leaf public key.
	PublicKey() *ecdsa.PublicKey
	// Subject returns a short printable summary for logs and errors.
	Subject() string
}

// CertIdentity implements Identity over a validated leaf certificate.
type CertIdentity struct {
	leaf        *x509.Certificate
	publicKey   *ecdsa.PublicKey
	fingerprint string

	roles       []string
	domains     []string
	delegations []string
	userID      string
	level       Level
	hasLevel    bool
}

// NewIdentity extracts identity attributes from a validated leaf certificate.
// The caller is responsible for chain validation; no verification happens here.
func NewIdentity(leaf *x509.Certificate) (*CertIdentity, error) {
	pub, ok := leaf.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate %q: unsupported public key type %T", leaf.Subject.CommonName, leaf.PublicKey)
	}

	id := &CertIdentity{
		leaf:        leaf,
		publicKey:   pub,
		fingerprint: CertFingerprint(leaf),
	}

	for _, ext := range leaf.Extensions {
		value := string(ext.Value)
		switch {
		case ext.Id.Equal(oidExchangeLevel):
			level, err := ParseLevel(value)
			if err != nil {
				return nil, fmt.Errorf("certificate %q: %w", leaf.Subject.CommonName, err)
			}
			id.level = level
			id.hasLevel = true
		case ext.Id.Equal(oidRoles):
			id.roles = splitAttr(value)
		case ext.Id.Equal(oidDomains):
			id.domains = splitAttr(value)
		case ext.Id.Equal(oidUserID):
			id.userID = value
		case ext.Id.Equal(oidDelegations):
			id.delegations = splitAttr(value)
		}
	}

	return id, nil
}

func (c *CertIdentity) Roles() []string { return c.roles }

func (c *CertIdentity) HasRole(role string) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c *CertIdentity) ExchangeLevel() (Level, bool) { return c.level, c.hasLevel }

func (c *CertIdentity) TenantID() string {
	if len(c.leaf.Subject.Organization) > 0 {
		return c.leaf.Subject.Organization[0]
	}
	return ""
}

func (c *CertIdentity) UserID() string { return c.userID }

func (c *CertIdentity) HasDelegation(delegation string) bool {
	for _, d := range c.delegations {
		if d == delegation {
			return true
		}
	}
	return false
}

func (c *CertIdentity) Fingerprint() string { return c.fingerprint }

func (c *CertIdentity) PublicKey() *ecdsa.PublicKey { return c.publicKey }

// Domains returns the domain set asserted by the certificate.
func (c *CertIdentity) Domains() []string { return c.domains }

// Certificate returns the underlying leaf.
func (c *CertIdentity) Certificate() *x509.Certificate { return c.leaf }

func (c *CertIdentity) Subject() string {
	summary := c.leaf.Subject.CommonName
	if level, ok := c.ExchangeLevel(); ok {
		summary += " (" + level.String() + ")"
	}
	if len(c.roles) > 0 {
		summary += " roles=" + strings.Join(c.roles, ",")
	}
	return summary
}

func splitAttr(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
