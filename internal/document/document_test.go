package document

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/internal/artifact"
	"touristid/internal/credential/models"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/middleware/requesttime"
)

func sampleRecord() *models.StoredCredentialRecord {
	return &models.StoredCredentialRecord{
		ID:     "vc_1700000000000_abc123xyz",
		UserID: "user_1",
		Credential: models.VerifiableCredential{
			CredentialSubject: map[string]any{
				"id":               "did:key:z6MkTourist",
				"fullName":         "Jane Roe",
				"nationality":      "CA",
				"emergencyContact": "+1-555-0100",
				"credentialType":   "Tourist Verification",
				"passportNumber":   "X1234567",
				"arrivalPort":      "YVR",
			},
		},
		Metadata: models.Metadata{
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Status:    models.StatusActive,
		},
	}
}

func TestRender(t *testing.T) {
	qr, err := artifact.Encode("https://localhost:3000/verify?token=abc")
	require.NoError(t, err)

	ctx := requesttime.WithTime(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	out, err := New(WithCompression(false)).Render(ctx, sampleRecord(), qr)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	for _, want := range []string{
		"Verifiable Credential",
		"Credential Details:",
		"Credential ID: vc_1700000000000_abc123xyz",
		"User ID: user_1",
		"Issued At: 2026-03-01T10:00:00Z",
		"Status: active",
		"Subject Information:",
		"Full Name: Jane Roe",
		"Passport Number: X1234567",
		"Verification QR Code:",
		FooterScan,
		FooterVerifiable,
		"Generated on: 2026-03-01T12:00:00Z",
	} {
		assert.Contains(t, string(out), want)
	}
	assert.NotContains(t, string(out), "did:key:z6MkTourist")
}

func TestRender_NonASCIIClaims(t *testing.T) {
	qr, err := artifact.Encode("https://localhost:3000/verify?token=abc")
	require.NoError(t, err)

	record := sampleRecord()
	record.Credential.CredentialSubject["fullName"] = "José Müller"
	record.Credential.CredentialSubject["nationality"] = "Côte d'Ivoire"

	out, err := New(WithCompression(false)).Render(context.Background(), record, qr)
	require.NoError(t, err)

	// WinAnsi: é=0xE9, ü=0xFC, ô=0xF4.
	assert.Contains(t, string(out), "Full Name: Jos\xe9 M\xfcller")
	assert.Contains(t, string(out), "Nationality: C\xf4te d'Ivoire")
	assert.NotContains(t, string(out), "José", "raw UTF-8 must not reach the text stream")
}

func TestRender_InvalidArtifact(t *testing.T) {
	_, err := New().Render(context.Background(), sampleRecord(), []byte("not an image"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRender))
}

func TestRender_NilRecord(t *testing.T) {
	_, err := New().Render(context.Background(), nil, nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRender))
}

func TestSubjectLines_Order(t *testing.T) {
	lines := SubjectLines(sampleRecord().Credential.CredentialSubject)
	assert.Equal(t, []string{
		"Full Name: Jane Roe",
		"Nationality: CA",
		"Emergency Contact: +1-555-0100",
		"Credential Type: Tourist Verification",
		"Arrival Port: YVR",
		"Passport Number: X1234567",
	}, lines)
}

func TestSubjectLines_NonStringValues(t *testing.T) {
	lines := SubjectLines(map[string]any{
		"groupSize": 3,
		"visits":    []any{"YVR", "YYZ"},
	})
	assert.Equal(t, []string{`Group Size: 3`, `Visits: ["YVR","YYZ"]`}, lines)
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"fullName":         "Full Name",
		"emergencyContact": "Emergency Contact",
		"nationality":      "Nationality",
		"a":                "A",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Humanize(in), in)
	}
}
