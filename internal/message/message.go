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

	"github.com/hostgrid/hostgrid/internal/trust"
)

// Domain is the grid domain this service answers for.
const Domain = "hosting"

// Incoming is a verified inbound message ready for dispatch. Identity has
// already been validated by the transport; handlers trust its attributes.
type Incoming struct {
	Kind     Kind
	Action   string
	Identity trust.Identity
	Payload  json.RawMessage
	Envelope *Envelope
}

// Ack is the bodyless success acknowledgment for commands.
type Ack struct {
	OK bool `json:"ok"`
}

// NewAck builds a positive acknowledgment.
func NewAck() *Ack {
	return &Ack{OK: true}
}

// ErrorResponse is a structured rejection with a stable numeric code that
// automated callers can branch on without string matching.
type ErrorResponse struct {
	OK   bool   `json:"ok"`
	Code int    `json:"error_code,omitempty"`
	Err  string `json:"error_message,omitempty"`
}

// NewError builds a coded rejection response.
func NewError(code int, text string) *ErrorResponse {
	return &ErrorResponse{OK: false, Code: code, Err: text}
}
