package fare

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/rts-transit/rapidride/internal/model"
)

// ErrMalformedPayload is returned (wrapped) when a transport payload
// cannot be decoded into a structurally complete signed envelope.
var ErrMalformedPayload = errors.New("malformed payload")

// EncodeTicket returns the canonical byte encoding of a ticket record:
// RFC 8785 canonical JSON (keys sorted lexicographically, no
// insignificant whitespace, UTF-8).  Signing and verification both
// operate over exactly these bytes, so two field-equal records always
// encode identically regardless of which side produced them.
func EncodeTicket(t model.TicketRecord) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode ticket: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize ticket: %w", err)
	}
	return canonical, nil
}

// EncodeEnvelope renders a signed envelope as the opaque textual QR
// payload: standard base64 over the JSON form of the envelope.  The
// outer encoding is deliberately independent of the canonical ticket
// encoding; it only has to round-trip exactly.
func EncodeEnvelope(env model.SignedEnvelope) (string, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope reverses EncodeEnvelope.  Any failure of the outer
// base64, the JSON structure, a missing required field or an id that is
// not a well-formed UUID yields an error wrapping ErrMalformedPayload.
func DecodeEnvelope(payload string) (model.SignedEnvelope, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return model.SignedEnvelope{}, fmt.Errorf("%w: base64: %v", ErrMalformedPayload, err)
	}
	var env model.SignedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.SignedEnvelope{}, fmt.Errorf("%w: json: %v", ErrMalformedPayload, err)
	}
	t := env.Ticket
	if t.TicketID == "" || t.UserID == "" || t.TicketType == "" || t.IssuedAt == "" || t.Issuer == "" {
		return model.SignedEnvelope{}, fmt.Errorf("%w: missing required ticket fields", ErrMalformedPayload)
	}
	if len(env.Signature) == 0 {
		return model.SignedEnvelope{}, fmt.Errorf("%w: missing signature", ErrMalformedPayload)
	}
	if _, err := uuid.Parse(t.TicketID); err != nil {
		return model.SignedEnvelope{}, fmt.Errorf("%w: ticket_id is not a UUID", ErrMalformedPayload)
	}
	return env, nil
}
