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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hostgrid/hostgrid/internal/audit"
	"github.com/hostgrid/hostgrid/internal/hosting"
	"github.com/hostgrid/hostgrid/internal/message"
	"github.com/hostgrid/hostgrid/internal/observability/logger"
	"github.com/hostgrid/hostgrid/internal/trust"
)

// ErrRoleNotPermitted rejects callers whose leaf certificate lacks the one
// infrastructure role allowed to request hosting credentials. Unlike the
// numbered rejections this is a hard error: the message fails outright.
var ErrRoleNotPermitted = errors.New("only the core role may request hosting tokens")

// ClientSource resolves the hosting record for a tenant. Inactive records
// are reported as absent.
type ClientSource interface {
	GetActiveClient(ctx context.Context, tenantID string) (*hosting.Client, error)
}

// Issuer runs the credential-issuance handshake: a multi-step mutual
// certificate verification ending in two short-lived scoped JWTs. The signing
// context is process-scoped and read-only.
type Issuer struct {
	signer      *trust.Signer
	verifier    *trust.Verifier
	clients     ClientSource
	auditLogger audit.Logger
	ttl         time.Duration
	now         func() time.Time
}

// NewIssuer creates a credential issuer with the given signing context.
func NewIssuer(signer *trust.Signer, verifier *trust.Verifier, clients ClientSource, auditLogger audit.Logger, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		signer:      signer,
		verifier:    verifier,
		clients:     clients,
		auditLogger: auditLogger,
		ttl:         ttl,
		now:         time.Now,
	}
}

// TokenRequest is the issue-token payload: an inner signed envelope carrying
// the caller's certificate material, plus the tenant id the caller believes
// it is acting for (informational; the authoritative id is computed from the
// validated root).
type TokenRequest struct {
	Request  *message.Envelope `json:"request"`
	TenantID string            `json:"tenant_id,omitempty"`
}

// TokenResponse is the issue-token success shape, sealed to the caller's key
// before it leaves the issuer.
type TokenResponse struct {
	OK           bool   `json:"ok"`
	JWTReadonly  string `json:"jwt_readonly"`
	JWTReadwrite string `json:"jwt_readwrite"`
}

// IssueTokens runs the handshake. Every outcome is a well-formed response:
// success is encrypted to the caller's validated public key, and each failed
// gate produces a structured rejection with its stable code. Only payload
// decoding and the role restriction fail the message outright.
func (i *Issuer) IssueTokens(ctx context.Context, payload []byte) (any, error) {
	var req TokenRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode token request: %w", err)
	}
	if req.Request == nil {
		return nil, fmt.Errorf("decode token request: inner request missing")
	}

	result, err := i.handshake(ctx, req.Request)
	if err != nil {
		var rejection *Rejection
		if errors.As(err, &rejection) {
			slog.DebugContext(ctx, "token handshake rejected",
				logger.Component("token"),
				logger.RejectionCode(int(rejection.Code)),
				logger.Error(err),
			)
			i.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeTokensRejected,
				TenantID: req.TenantID,
				Action:   "issue-token",
				Metadata: map[string]any{"code": int(rejection.Code)},
			})
			return message.NewError(int(rejection.Code), rejection.Reason()), nil
		}
		return nil, err
	}

	i.auditLogger.Log(ctx, audit.Event{
		Type:        audit.TypeTokensIssued,
		TenantID:    result.tenantID,
		Fingerprint: result.caller.Fingerprint(),
		Action:      "issue-token",
	})

	return result.sealed, nil
}

type handshakeResult struct {
	tenantID string
	caller   *trust.CertIdentity
	sealed   *trust.EncryptedMessage
}

// handshake is the sequential gate pipeline. Each step short-circuits with
// its coded rejection; ordering matters and mirrors the wire contract.
func (i *Issuer) handshake(ctx context.Context, inner *message.Envelope) (*handshakeResult, error) {
	// 1. The inner request must carry a valid signature of its own.
	if err := inner.VerifySignature(); err != nil {
		return nil, reject(RejectSignatureInvalid, err)
	}

	// 2. The caller asserts its root of trust; load and validate it.
	if inner.Root == "" {
		return nil, reject(RejectRootMissing, nil)
	}
	root, err := i.verifier.LoadRoot(inner.Root)
	if err != nil {
		return nil, reject(RejectRootInvalid, err)
	}

	// 3. The leaf chain must validate against that root.
	if len(inner.Certificate) == 0 {
		return nil, reject(RejectLeafMissing, nil)
	}
	leaf, err := i.verifier.VerifyChain(inner.Certificate, root)
	if err != nil {
		return nil, reject(RejectLeafInvalid, err)
	}
	caller, err := trust.NewIdentity(leaf)
	if err != nil {
		return nil, reject(RejectLeafInvalid, err)
	}

	// 4. The declared signing key must be the leaf's key.
	declared, err := inner.SignerFingerprint()
	if err != nil {
		return nil, reject(RejectFingerprintMismatch, err)
	}
	if declared != caller.Fingerprint() {
		return nil, reject(RejectFingerprintMismatch, nil)
	}

	// 5. Only the core infrastructure role may request hosting credentials.
	if !caller.HasRole(trust.RoleCore) {
		return nil, ErrRoleNotPermitted
	}

	// 6. The tenant id computed from the root must match the leaf's claim.
	tenantID := trust.ComputeTenantID(root)
	if caller.TenantID() != tenantID {
		return nil, reject(RejectTenantIDMismatch, nil)
	}

	// 7. Hosting must be configured and active for the tenant.
	client, err := i.clients.GetActiveClient(ctx, tenantID)
	if err != nil {
		if errors.Is(err, hosting.ErrClientNotFound) {
			return nil, reject(RejectTenantNotConfigured, err)
		}
		return nil, fmt.Errorf("lookup hosting client %s: %w", tenantID, err)
	}

	// 8. Mint the read-only and read-write credentials.
	readonly, err := i.mint(tenantID, client.Roles, client.Domains, false)
	if err != nil {
		return nil, err
	}
	readwrite, err := i.mint(tenantID, client.Roles, client.Domains, true)
	if err != nil {
		return nil, err
	}

	// 9. Seal the response to the caller's validated key.
	body, err := json.Marshal(&TokenResponse{
		OK:           true,
		JWTReadonly:  readonly,
		JWTReadwrite: readwrite,
	})
	if err != nil {
		return nil, err
	}
	sealed, err := trust.Encrypt(caller.PublicKey(), body)
	if err != nil {
		return nil, fmt.Errorf("seal token response: %w", err)
	}

	return &handshakeResult{tenantID: tenantID, caller: caller, sealed: sealed}, nil
}

// mint signs one hosting credential. The kid header names the issuer's own
// certificate so verifiers can resolve the signing key.
func (i *Issuer) mint(tenantID string, roles, domains []string, readwrite bool) (string, error) {
	now := i.now()
	claims := &HostingClaims{
		Roles:     roles,
		Domains:   domains,
		ReadWrite: readwrite,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   tenantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = i.signer.Fingerprint()

	signed, err := tok.SignedString(i.signer.Key())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
