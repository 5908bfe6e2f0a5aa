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

package hosting

import (
	"encoding/json"
	"time"
)

// Client is the durable hosting configuration for one tenant. One record per
// tenant id; records are deactivated, never deleted.
type Client struct {
	TenantID    string   `json:"tenant_id"`
	Descriptor  string   `json:"descriptor,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Domains     []string `json:"domains,omitempty"`
	Contact     string   `json:"contact,omitempty"`
	Information string   `json:"information,omitempty"`
	// Expiration is the optional hosting expiry; nil means no expiry.
	Expiration *time.Time `json:"expiration,omitempty"`
	// Quota is an opaque structured sub-record; the domain stores it without
	// decoding.
	Quota json.RawMessage `json:"quota,omitempty"`
	// EncryptedPayload is opaque ciphertext; the domain never decrypts it.
	EncryptedPayload string `json:"encrypted_payload,omitempty"`
	Active           bool   `json:"active"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// SaveClientPayload is the wire shape of the save-client command.
type SaveClientPayload struct {
	TenantID         string          `json:"tenant_id"`
	Descriptor       string          `json:"descriptor,omitempty"`
	Roles            []string        `json:"roles,omitempty"`
	Domains          []string        `json:"domains,omitempty"`
	Contact          string          `json:"contact,omitempty"`
	Information      string          `json:"information,omitempty"`
	Expiration       *int64          `json:"expiration,omitempty"` // epoch seconds
	Quota            json.RawMessage `json:"quota,omitempty"`
	EncryptedPayload string          `json:"encrypted_payload,omitempty"`
	Active           *bool           `json:"active,omitempty"` // defaults to true
}

// ClientRow is a hosting record as exposed by list-clients: everything except
// the encrypted payload and bookkeeping fields.
type ClientRow struct {
	TenantID    string          `json:"tenant_id"`
	Descriptor  string          `json:"descriptor,omitempty"`
	Roles       []string        `json:"roles,omitempty"`
	Domains     []string        `json:"domains,omitempty"`
	Contact     string          `json:"contact,omitempty"`
	Information string          `json:"information,omitempty"`
	Expiration  *int64          `json:"expiration,omitempty"` // epoch seconds
	Quota       json.RawMessage `json:"quota,omitempty"`
}

// ListClientsResponse is the wire shape of the list-clients reply.
type ListClientsResponse struct {
	OK      bool        `json:"ok"`
	Err     string      `json:"error,omitempty"`
	Clients []ClientRow `json:"clients"`
}

func rowFromClient(c *Client) ClientRow {
	row := ClientRow{
		TenantID:    c.TenantID,
		Descriptor:  c.Descriptor,
		Roles:       c.Roles,
		Domains:     c.Domains,
		Contact:     c.Contact,
		Information: c.Information,
		Quota:       c.Quota,
	}
	if c.Expiration != nil {
		epoch := c.Expiration.Unix()
		row.Expiration = &epoch
	}
	return row
}
