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

package token

import (
	"crypto/x509"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hostgrid/hostgrid/internal/trust"
)

// CertResolver maps a key id (certificate fingerprint) to the signer's
// certificate, typically from the grid certificate cache.
type CertResolver func(kid string) (*x509.Certificate, error)

// VerifyToken validates a hosting credential: the kid must resolve to a
// certificate carrying the secure exchange level, and the signature must
// verify with that certificate's key. Returns the embedded claims.
func VerifyToken(tokenString string, resolve CertResolver) (*HostingClaims, error) {
	claims := &HostingClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		kid, ok := tok.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		cert, err := resolve(kid)
		if err != nil {
			return nil, fmt.Errorf("resolve signer %s: %w", kid, err)
		}
		identity, err := trust.NewIdentity(cert)
		if err != nil {
			return nil, err
		}
		if level, ok := identity.ExchangeLevel(); !ok || !level.AtLeast(trust.L4Secure) {
			return nil, fmt.Errorf("signer %s lacks the secure exchange level", kid)
		}
		return identity.PublicKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
