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

import "github.com/golang-jwt/jwt/v5"

// TokenIssuer is the iss claim on every minted credential.
const TokenIssuer = "hosting"

// HostingClaims are the custom claims of a hosting credential. Subject is the
// tenant id; ReadWrite distinguishes the two credentials minted per handshake.
type HostingClaims struct {
	// Roles hosted for the tenant.
	Roles []string `json:"roles,omitempty"`
	// Domains hosted for the tenant.
	Domains []string `json:"domains,omitempty"`
	// ReadWrite is true when the credential grants writes; false means
	// read-only.
	ReadWrite bool `json:"readwrite"`

	jwt.RegisteredClaims
}
