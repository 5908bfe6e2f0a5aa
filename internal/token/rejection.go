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

import "fmt"

// RejectCode is a stable numeric identifier for a handshake rejection.
// Callers branch on the code, never on the message text. Code 2 is reserved
// and unassigned.
type RejectCode int

const (
	RejectSignatureInvalid    RejectCode = 1
	RejectRootMissing         RejectCode = 3
	RejectRootInvalid         RejectCode = 4
	RejectTenantIDMismatch    RejectCode = 5
	RejectLeafMissing         RejectCode = 6
	RejectLeafInvalid         RejectCode = 7
	RejectFingerprintMismatch RejectCode = 8
	RejectTenantNotConfigured RejectCode = 9
)

var rejectReasons = map[RejectCode]string{
	RejectSignatureInvalid:    "request signature invalid",
	RejectRootMissing:         "root certificate missing",
	RejectRootInvalid:         "root certificate invalid",
	RejectTenantIDMismatch:    "tenant id mismatch between certificate and root",
	RejectLeafMissing:         "request certificate missing",
	RejectLeafInvalid:         "request certificate invalid",
	RejectFingerprintMismatch: "request certificate mismatch",
	RejectTenantNotConfigured: "hosting not configured for tenant",
}

// Rejection is one failed gate of the issuance handshake. It satisfies error
// so the pipeline can short-circuit, but the issuer converts it into a coded
// wire response rather than propagating it.
type Rejection struct {
	Code  RejectCode
	cause error
}

func reject(code RejectCode, cause error) *Rejection {
	return &Rejection{Code: code, cause: cause}
}

// Reason is the human-readable text paired with the code on the wire.
func (r *Rejection) Reason() string {
	return rejectReasons[r.Code]
}

func (r *Rejection) Error() string {
	if r.cause != nil {
		return fmt.Sprintf("token rejection %d: %s: %v", r.Code, r.Reason(), r.cause)
	}
	return fmt.Sprintf("token rejection %d: %s", r.Code, r.Reason())
}

func (r *Rejection) Unwrap() error { return r.cause }
