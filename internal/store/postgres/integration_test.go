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

//go:build integration
// +build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostgrid/hostgrid/internal/hosting"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := New(ctx, Config{
		Host:         "localhost",
		Port:         "5432",
		User:         "hostgrid",
		Password:     "hostgrid",
		Database:     "hostgrid_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to database: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx, InitialSchema))
	return db
}

func TestClientRepository_UpsertIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewClientRepository(db)
	ctx := context.Background()
	tenantID := "it-" + uuid.NewString()

	client := &hosting.Client{
		TenantID:   tenantID,
		Descriptor: "first",
		Roles:      []string{"fiche"},
		Active:     true,
	}
	require.NoError(t, repo.Upsert(ctx, client))

	first, err := repo.GetByTenantID(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, first.ModifiedAt, "first write sets both timestamps")

	time.Sleep(10 * time.Millisecond)
	client.Descriptor = "second"
	require.NoError(t, repo.Upsert(ctx, client))

	second, err := repo.GetByTenantID(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "second", second.Descriptor)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "created_at never changes")
	assert.True(t, second.ModifiedAt.After(first.ModifiedAt), "modified_at advances")
}

func TestClientRepository_GetMissing(t *testing.T) {
	db := testDB(t)
	repo := NewClientRepository(db)

	_, err := repo.GetByTenantID(context.Background(), "it-"+uuid.NewString())
	assert.ErrorIs(t, err, hosting.ErrClientNotFound)
}

func TestClientRepository_RoundtripFields(t *testing.T) {
	db := testDB(t)
	repo := NewClientRepository(db)
	ctx := context.Background()
	tenantID := "it-" + uuid.NewString()

	expiration := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	client := &hosting.Client{
		TenantID:         tenantID,
		Descriptor:       "acme",
		Roles:            []string{"fiche", "messaging"},
		Domains:          []string{"hosting"},
		Contact:          "ops@acme.example",
		Information:      "primary region eu-west",
		Expiration:       &expiration,
		Quota:            []byte(`{"max_clients":10}`),
		EncryptedPayload: "b64ciphertext",
		Active:           true,
	}
	require.NoError(t, repo.Upsert(ctx, client))

	got, err := repo.GetByTenantID(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, client.Descriptor, got.Descriptor)
	assert.Equal(t, client.Roles, got.Roles)
	assert.Equal(t, client.Domains, got.Domains)
	assert.Equal(t, client.Contact, got.Contact)
	assert.Equal(t, client.Information, got.Information)
	require.NotNil(t, got.Expiration)
	assert.True(t, expiration.Equal(got.Expiration.UTC()))
	assert.JSONEq(t, string(client.Quota), string(got.Quota))
	assert.Equal(t, client.EncryptedPayload, got.EncryptedPayload)
	assert.True(t, got.Active)
}
