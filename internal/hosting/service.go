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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hostgrid/hostgrid/internal/audit"
	"github.com/hostgrid/hostgrid/internal/trust"
)

// ErrMalformedPayload marks a save-client payload that failed structural
// validation. The whole operation aborts; nothing is written.
var ErrMalformedPayload = errors.New("malformed payload")

// Service provides hosting client business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
	now         func() time.Time
}

// NewService creates a new hosting service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// SaveClient applies a validated hosting mutation idempotently. The payload's
// tenant id must resolve to a non-expired root-of-trust; the record is
// replaced wholesale except created_at, which the store preserves. Repeated
// calls with the same payload converge to one record.
func (s *Service) SaveClient(ctx context.Context, payload []byte) error {
	var cmd SaveClientPayload
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if cmd.TenantID == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrMalformedPayload)
	}

	if _, err := trust.CheckTenantID(cmd.TenantID, s.now()); err != nil {
		return err
	}

	client := &Client{
		TenantID:         cmd.TenantID,
		Descriptor:       cmd.Descriptor,
		Roles:            cmd.Roles,
		Domains:          cmd.Domains,
		Contact:          cmd.Contact,
		Information:      cmd.Information,
		Quota:            cmd.Quota,
		EncryptedPayload: cmd.EncryptedPayload,
		Active:           true,
	}
	if cmd.Active != nil {
		client.Active = *cmd.Active
	}
	if cmd.Expiration != nil {
		expiration := time.Unix(*cmd.Expiration, 0).UTC()
		client.Expiration = &expiration
	}

	if err := s.repo.Upsert(ctx, client); err != nil {
		return fmt.Errorf("save client %s: %w", cmd.TenantID, err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeClientSaved,
		TenantID: cmd.TenantID,
		Action:   "save-client",
		Metadata: map[string]any{"active": client.Active},
	})

	return nil
}

// GetClient fetches one hosting record by tenant id.
func (s *Service) GetClient(ctx context.Context, tenantID string) (*Client, error) {
	return s.repo.GetByTenantID(ctx, tenantID)
}

// GetActiveClient fetches one hosting record, treating inactive records as
// absent.
func (s *Service) GetActiveClient(ctx context.Context, tenantID string) (*Client, error) {
	client, err := s.repo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !client.Active {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// ListClients returns all hosting records shaped for the list-clients reply,
// encrypted payloads excluded.
func (s *Service) ListClients(ctx context.Context) (*ListClientsResponse, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	rows := make([]ClientRow, 0, len(clients))
	for _, client := range clients {
		rows = append(rows, rowFromClient(client))
	}

	return &ListClientsResponse{OK: true, Clients: rows}, nil
}
