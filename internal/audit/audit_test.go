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

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return buf
}

func TestSlogLogger_EmitsEvent(t *testing.T) {
	buf := captureLogs(t)

	NewSlogLogger().Log(context.Background(), Event{
		Type:        TypeTokensIssued,
		TenantID:    "tenant-1",
		Fingerprint: "abcd",
		Action:      "issue-token",
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "AUDIT_EVENT", record["msg"])
	assert.Equal(t, TypeTokensIssued, record["audit_type"])
	assert.Equal(t, "tenant-1", record["tenant_id"])
	assert.Equal(t, "abcd", record["fingerprint"])
	assert.Equal(t, "audit", record["component"])
	assert.NotEmpty(t, record["audit_id"])
}

func TestSlogLogger_RedactsSecrets(t *testing.T) {
	buf := captureLogs(t)

	NewSlogLogger().Log(context.Background(), Event{
		Type:     TypeClientSaved,
		TenantID: "tenant-1",
		Metadata: map[string]any{
			"token":  "super-secret",
			"active": true,
		},
	})

	out := buf.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, "active")
}
