package fare

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rts-transit/rapidride/internal/model"
)

func sampleRecord() model.TicketRecord {
	return model.TicketRecord{
		TicketID:   "9f2d3c44-7b1a-4a7e-9c5d-0e8f6a1b2c3d",
		UserID:     "001132",
		TicketType: model.TicketSingleUse,
		IssuedAt:   "20250815_0930-0600",
		Issuer:     "RTS RapidRide",
	}
}

func TestEncodeTicket_CanonicalForm(t *testing.T) {
	encoded, err := EncodeTicket(sampleRecord())
	require.NoError(t, err)

	// Keys sorted lexicographically, compact separators, valid_for
	// omitted for a per-ride fare.
	want := `{"issued_at":"20250815_0930-0600","issuer":"RTS RapidRide",` +
		`"ticket_id":"9f2d3c44-7b1a-4a7e-9c5d-0e8f6a1b2c3d",` +
		`"ticket_type":"single_use","user_id":"001132"}`
	assert.Equal(t, want, string(encoded))
}

func TestEncodeTicket_Deterministic(t *testing.T) {
	a, err := EncodeTicket(sampleRecord())
	require.NoError(t, err)
	b, err := EncodeTicket(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeTicket_ValidForIncludedForPass(t *testing.T) {
	rec := sampleRecord()
	rec.TicketType = model.TicketMonthlyPass
	rec.ValidFor = "2025-08"

	encoded, err := EncodeTicket(rec)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"valid_for":"2025-08"`)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	env := model.SignedEnvelope{
		Ticket:    sampleRecord(),
		Signature: []byte("not-a-real-signature-but-bytes!!"),
	}

	payload, err := EncodeEnvelope(env)
	require.NoError(t, err)

	got, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	assert.Equal(t, env.Ticket, got.Ticket)
	assert.Equal(t, env.Signature, got.Signature)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	validEnv := model.SignedEnvelope{Ticket: sampleRecord(), Signature: []byte("sig")}

	noSig := validEnv
	noSig.Signature = nil

	badID := validEnv
	badID.Ticket.TicketID = "not-a-uuid"

	missingUser := validEnv
	missingUser.Ticket.UserID = ""

	mustPayload := func(env model.SignedEnvelope) string {
		p, err := EncodeEnvelope(env)
		require.NoError(t, err)
		return p
	}

	cases := map[string]string{
		"not base64":        "%%%not-base64%%%",
		"not json":          base64.StdEncoding.EncodeToString([]byte("hello")),
		"empty object":      base64.StdEncoding.EncodeToString([]byte(`{}`)),
		"missing signature": mustPayload(noSig),
		"bad ticket id":     mustPayload(badID),
		"missing user id":   mustPayload(missingUser),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope(payload)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}
