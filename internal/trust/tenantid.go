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
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// A tenant id is derived from the tenant's root-of-trust certificate:
//
//	base64url( version ‖ expiration ‖ sha256(root DER) )
//
// where version is a single byte and expiration is the root's NotAfter as a
// big-endian uint32 in kiloseconds. Embedding the expiration lets consumers
// reject ids whose root-of-trust has lapsed without fetching the certificate.
const tenantIDVersion = 0x02

const tenantIDRawLen = 1 + 4 + sha256.Size

var (
	ErrTenantIDInvalid = errors.New("tenant id is not well formed")
	// ErrIdentityExpired marks a tenant id whose root-of-trust validity
	// window has closed.
	ErrIdentityExpired = errors.New("tenant root of trust has expired")
)

// TenantIDInfo holds the fields recoverable from a tenant id alone.
type TenantIDInfo struct {
	Version    byte
	Expiration time.Time
}

// ComputeTenantID derives the tenant id for a root-of-trust certificate.
func ComputeTenantID(root *x509.Certificate) string {
	buf := make([]byte, 0, tenantIDRawLen)
	buf = append(buf, tenantIDVersion)
	buf = binary.BigEndian.AppendUint32(buf, uint32(root.NotAfter.Unix()/1000))
	sum := sha256.Sum256(root.Raw)
	buf = append(buf, sum[:]...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// ParseTenantID decodes a tenant id and recovers its embedded metadata.
func ParseTenantID(id string) (*TenantIDInfo, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTenantIDInvalid, err)
	}
	if len(raw) != tenantIDRawLen {
		return nil, fmt.Errorf("%w: length %d", ErrTenantIDInvalid, len(raw))
	}
	if raw[0] != tenantIDVersion {
		return nil, fmt.Errorf("%w: version %d", ErrTenantIDInvalid, raw[0])
	}
	exp := int64(binary.BigEndian.Uint32(raw[1:5])) * 1000
	return &TenantIDInfo{
		Version:    raw[0],
		Expiration: time.Unix(exp, 0).UTC(),
	}, nil
}

// CheckTenantID parses id and fails with ErrIdentityExpired when the embedded
// root-of-trust validity window has closed at the reference time.
func CheckTenantID(id string, now time.Time) (*TenantIDInfo, error) {
	info, err := ParseTenantID(id)
	if err != nil {
		return nil, err
	}
	if info.Expiration.Before(now) {
		return nil, fmt.Errorf("%w: since %s", ErrIdentityExpired, info.Expiration.Format(time.RFC3339))
	}
	return info, nil
}
