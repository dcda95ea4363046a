package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rts-transit/rapidride/internal/fare"
	"github.com/rts-transit/rapidride/internal/model"
	"github.com/rts-transit/rapidride/internal/queue"
	"github.com/rts-transit/rapidride/internal/repository"
	queue_publisher "github.com/rts-transit/rapidride/internal/service"
)

// TicketHandler exposes the fare engine over HTTP: issuance for
// authenticated riders and the validate/consume operations called by
// fare-gate devices. The handler is a thin layer; every rule lives in
// the fare package.
type TicketHandler struct {
	Signer   *fare.Signer
	Verifier *fare.Verifier
	Tickets  *repository.TicketRepo
}

func NewTicketHandler(s *fare.Signer, v *fare.Verifier, t *repository.TicketRepo) *TicketHandler {
	return &TicketHandler{Signer: s, Verifier: v, Tickets: t}
}

// ----- DTOs -----

type issueReq struct {
	TicketType string `json:"ticket_type"`
	ValidFor   string `json:"valid_for,omitempty"`
}

type issueResp struct {
	Payload string             `json:"payload"` // base64 QR payload
	Ticket  model.TicketRecord `json:"ticket"`
}

type validateReq struct {
	Payload string `json:"payload"`
}

type consumeReq struct {
	TicketID string `json:"ticket_id"`
}

type storedTicketResp struct {
	TicketID   string `json:"ticket_id"`
	TicketType string `json:"ticket_type"`
	ValidFor   string `json:"valid_for,omitempty"`
	IssuedAt   string `json:"issued_at"`
	Status     string `json:"status"`
}

// Issue signs a new ticket for the authenticated rider and returns the
// QR transport payload together with the signed record. Issuance and
// persistence are one unit: if the store insert fails no payload is
// returned.
func (h *TicketHandler) Issue(c echo.Context) error {
	if h.Signer == nil {
		// Verify-only deployment: no signing key configured.
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "issuance not available"})
	}
	uid, ok := contextUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	env, err := h.Signer.Issue(ctx, riderID(uid), model.TicketType(req.TicketType), req.ValidFor)
	if err != nil {
		switch {
		case errors.Is(err, fare.ErrUnknownTicketType):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown ticket type"})
		case errors.Is(err, fare.ErrInvalidValidFor):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_for must be YYYY-MM"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issuance failed"})
		}
	}

	payload, err := fare.EncodeEnvelope(env)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode payload failed"})
	}

	// Fire-and-forget analytics event; a broker outage never fails the
	// issuance the rider already paid for.
	_ = queue_publisher.PublishTicketIssued(ctx, queue.TicketIssuedEvent{
		TicketID:   env.Ticket.TicketID,
		UserID:     env.Ticket.UserID,
		TicketType: string(env.Ticket.TicketType),
		ValidFor:   env.Ticket.ValidFor,
		IssuedAt:   env.Ticket.IssuedAt,
		Issuer:     env.Ticket.Issuer,
	})

	return c.JSON(http.StatusCreated, issueResp{Payload: payload, Ticket: env.Ticket})
}

// Validate runs the read-only validation pipeline over a scanned
// payload. Both valid and invalid outcomes are HTTP 200; the result
// body carries the verdict and its reason. Only a storage failure is a
// server error.
func (h *TicketHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || req.Payload == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payload required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Verifier.Validate(ctx, req.Payload)
	if err != nil {
		c.Logger().Errorf("validate: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation unavailable"})
	}
	return c.JSON(http.StatusOK, result)
}

// Consume spends a per-ride ticket at the gate. The result mirrors the
// engine's consume outcome; exactly one concurrent caller ever sees
// "consumed" for a given ticket.
func (h *TicketHandler) Consume(c echo.Context) error {
	var req consumeReq
	if err := c.Bind(&req); err != nil || req.TicketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Verifier.Consume(ctx, req.TicketID)
	if err != nil {
		c.Logger().Errorf("consume: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "consume unavailable"})
	}

	if result.Outcome == fare.OutcomeConsumed {
		_ = queue_publisher.PublishTicketConsumed(ctx, queue.TicketConsumedEvent{
			TicketID:   result.TicketID,
			ConsumedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, result)
}

// ListMine returns the authenticated rider's tickets, newest first.
func (h *TicketHandler) ListMine(c echo.Context) error {
	uid, ok := contextUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByUser(ctx, riderID(uid))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]storedTicketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, storedTicketResp{
			TicketID:   t.TicketID,
			TicketType: string(t.TicketType),
			ValidFor:   t.ValidFor,
			IssuedAt:   t.IssuedAt,
			Status:     string(t.Status),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Revoke flags a ticket as revoked (admin only). Revoked tickets fail
// validation with a distinct reason and can never be consumed.
func (h *TicketHandler) Revoke(c echo.Context) error {
	ticketID := c.Param("id")
	if ticketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tickets.Revoke(ctx, ticketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
