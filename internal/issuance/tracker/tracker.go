// Package tracker persists issuance progress so callers can inspect how far a
// request got, including failures after the credential was stored.
package tracker

import (
	"time"

	"touristid/internal/issuance/models"
)

// DefaultTTL bounds how long an issuance history is retained.
const DefaultTTL = 24 * time.Hour

func cloneIssuance(in *models.Issuance) *models.Issuance {
	out := *in
	out.Steps = append([]models.StepRecord(nil), in.Steps...)
	return &out
}
