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
	"context"
	"errors"
)

var ErrClientNotFound = errors.New("hosting client not found")

// Repository defines the interface for hosting client storage.
//
// Upsert must be atomic per tenant id: created_at is written only on first
// insert, every other field is replaced wholesale, and modified_at is set
// from the store's clock on every accepted write. Concurrent upserts for the
// same tenant id must serialize to a single record.
type Repository interface {
	Upsert(ctx context.Context, client *Client) error
	GetByTenantID(ctx context.Context, tenantID string) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
}
