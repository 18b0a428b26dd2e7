package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "touristid/pkg/domain-errors"
)

type sampleRequest struct {
	UserID  string `json:"userId" validate:"required,notblank,max=8"`
	BaseURL string `json:"baseUrl" validate:"omitempty,http_url"`
	QRType  string `json:"qrType" validate:"omitempty,oneof=presentation verification"`
	VCID    string `json:"vcId" validate:"excludes=/"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantMsg string
	}{
		{name: "valid", req: sampleRequest{UserID: "user_1"}},
		{name: "missing", req: sampleRequest{}, wantMsg: "userId is required"},
		{name: "blank", req: sampleRequest{UserID: "   "}, wantMsg: "userId must not be blank"},
		{name: "too long", req: sampleRequest{UserID: "abcdefghij"}, wantMsg: "userId must be at most 8"},
		{name: "bad url", req: sampleRequest{UserID: "u", BaseURL: "not a url"}, wantMsg: "baseUrl must be a valid url"},
		{name: "separator", req: sampleRequest{UserID: "u", VCID: "vc_1/vc_2"}, wantMsg: `vcId must not contain "/"`},
		{name: "bad enum", req: sampleRequest{UserID: "u", QRType: "poster"}, wantMsg: "qrType must be one of [presentation verification]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestErrorMessage_NonValidatorError(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(assert.AnError))
}
