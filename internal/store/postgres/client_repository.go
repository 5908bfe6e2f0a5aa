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

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hostgrid/hostgrid/internal/hosting"
)

// ClientRepository implements hosting.Repository
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new hosting client repository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Upsert atomically inserts or replaces the record for client.TenantID.
// The merge policy is the core idempotence mechanism: created_at is written
// only by the insert arm, every mutable field comes from the incoming record,
// and modified_at always takes the database clock.
func (r *ClientRepository) Upsert(ctx context.Context, client *hosting.Client) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO hosting_clients (
			tenant_id, descriptor, roles, domains, contact, information,
			expiration, quota, encrypted_payload, active, created_at, modified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			descriptor        = EXCLUDED.descriptor,
			roles             = EXCLUDED.roles,
			domains           = EXCLUDED.domains,
			contact           = EXCLUDED.contact,
			information       = EXCLUDED.information,
			expiration        = EXCLUDED.expiration,
			quota             = EXCLUDED.quota,
			encrypted_payload = EXCLUDED.encrypted_payload,
			active            = EXCLUDED.active,
			modified_at       = now()
	`,
		client.TenantID,
		nullString(client.Descriptor),
		client.Roles,
		client.Domains,
		nullString(client.Contact),
		nullString(client.Information),
		client.Expiration,
		[]byte(client.Quota),
		nullString(client.EncryptedPayload),
		client.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert hosting client: %w", err)
	}
	return nil
}

// GetByTenantID retrieves one hosting client record
func (r *ClientRepository) GetByTenantID(ctx context.Context, tenantID string) (*hosting.Client, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT tenant_id, descriptor, roles, domains, contact, information,
		       expiration, quota, encrypted_payload, active, created_at, modified_at
		FROM hosting_clients
		WHERE tenant_id = $1
	`, tenantID)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hosting.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get hosting client: %w", err)
	}
	return client, nil
}

// List retrieves all hosting client records ordered by tenant id
func (r *ClientRepository) List(ctx context.Context) ([]*hosting.Client, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT tenant_id, descriptor, roles, domains, contact, information,
		       expiration, quota, encrypted_payload, active, created_at, modified_at
		FROM hosting_clients
		ORDER BY tenant_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosting clients: %w", err)
	}
	defer rows.Close()

	var clients []*hosting.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hosting client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*hosting.Client, error) {
	var (
		client           hosting.Client
		descriptor       sql.NullString
		contact          sql.NullString
		information      sql.NullString
		expiration       sql.NullTime
		quota            []byte
		encryptedPayload sql.NullString
	)
	err := row.Scan(
		&client.TenantID,
		&descriptor,
		&client.Roles,
		&client.Domains,
		&contact,
		&information,
		&expiration,
		&quota,
		&encryptedPayload,
		&client.Active,
		&client.CreatedAt,
		&client.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	client.Descriptor = descriptor.String
	client.Contact = contact.String
	client.Information = information.String
	client.EncryptedPayload = encryptedPayload.String
	client.Quota = quota
	if expiration.Valid {
		t := expiration.Time
		client.Expiration = &t
	}
	return &client, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
