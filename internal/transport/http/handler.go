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

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"github.com/hostgrid/hostgrid/internal/audit"
	"github.com/hostgrid/hostgrid/internal/authz"
	"github.com/hostgrid/hostgrid/internal/dispatch"
	"github.com/hostgrid/hostgrid/internal/hosting"
	"github.com/hostgrid/hostgrid/internal/message"
	"github.com/hostgrid/hostgrid/internal/observability/logger"
	"github.com/hostgrid/hostgrid/internal/trust"
)

// Handler is the grid ingress adapter: it verifies inbound envelope
// signatures and certificate chains, builds the identity, and hands the
// message to the dispatcher. Delivery guarantees belong to the surrounding
// message bus, not to this adapter.
type Handler struct {
	verifier    *trust.Verifier
	dispatcher  *dispatch.Dispatcher
	auditLogger audit.Logger

	messagesTotal metric.Int64Counter
	droppedTotal  metric.Int64Counter
}

// NewHandler creates the ingress handler.
func NewHandler(verifier *trust.Verifier, dispatcher *dispatch.Dispatcher, auditLogger audit.Logger, meter metric.Meter) *Handler {
	messagesTotal, _ := meter.Int64Counter("grid_messages_total",
		metric.WithDescription("Inbound grid messages accepted for dispatch"))
	droppedTotal, _ := meter.Int64Counter("grid_messages_dropped_total",
		metric.WithDescription("Inbound grid messages dropped for unknown actions"))

	return &Handler{
		verifier:      verifier,
		dispatcher:    dispatcher,
		auditLogger:   auditLogger,
		messagesTotal: messagesTotal,
		droppedTotal:  droppedTotal,
	}
}

// HandleMessage processes one signed grid envelope.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var env message.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		respondError(w, http.StatusBadRequest, "invalid envelope")
		return
	}

	if err := env.VerifySignature(); err != nil {
		respondError(w, http.StatusUnauthorized, "envelope signature invalid")
		return
	}

	identity, err := h.verifier.VerifyIdentity(env.Certificate)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "certificate chain invalid")
		return
	}

	// The signing key must be the one bound by the certificate chain.
	declared, err := env.SignerFingerprint()
	if err != nil || declared != identity.Fingerprint() {
		respondError(w, http.StatusUnauthorized, "signing key does not match certificate")
		return
	}

	if env.Routing == nil || env.Routing.Action == "" {
		respondError(w, http.StatusBadRequest, "envelope has no routing")
		return
	}
	if env.Routing.Domain != "" && env.Routing.Domain != message.Domain {
		respondError(w, http.StatusBadRequest, "message routed to wrong domain")
		return
	}

	msg := &message.Incoming{
		Kind:     env.Kind,
		Action:   env.Routing.Action,
		Identity: identity,
		Payload:  env.Content,
		Envelope: &env,
	}

	h.messagesTotal.Add(ctx, 1)

	result, err := h.dispatcher.Dispatch(ctx, msg)
	if err != nil {
		h.respondDispatchError(ctx, w, msg, err)
		return
	}

	if result == nil {
		result = message.NewAck()
	}
	respondJSON(w, http.StatusOK, result)
}

// respondDispatchError maps dispatch failures onto the wire. Unknown actions
// are dropped without a response body; everything else surfaces to the caller.
func (h *Handler) respondDispatchError(ctx context.Context, w http.ResponseWriter, msg *message.Incoming, err error) {
	var unauthorized *authz.UnauthorizedError

	switch {
	case errors.Is(err, dispatch.ErrUnknownAction):
		h.droppedTotal.Add(ctx, 1)
		h.auditLogger.Log(ctx, audit.Event{
			Type:        audit.TypeActionDropped,
			TenantID:    msg.Identity.TenantID(),
			Fingerprint: msg.Identity.Fingerprint(),
			Action:      msg.Action,
		})
		w.WriteHeader(http.StatusNoContent)

	case errors.As(err, &unauthorized):
		h.auditLogger.Log(ctx, audit.Event{
			Type:        audit.TypeAccessDenied,
			TenantID:    msg.Identity.TenantID(),
			Fingerprint: msg.Identity.Fingerprint(),
			Action:      msg.Action,
		})
		respondError(w, http.StatusForbidden, unauthorized.Error())

	case errors.Is(err, hosting.ErrMalformedPayload),
		errors.Is(err, trust.ErrTenantIDInvalid),
		errors.Is(err, trust.ErrIdentityExpired):
		respondError(w, http.StatusBadRequest, err.Error())

	default:
		slog.ErrorContext(ctx, "message handling failed",
			logger.Component("transport"),
			logger.Action(msg.Action),
			logger.Kind(string(msg.Kind)),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
