// Package store persists issued credentials. Records are append-only: the
// credential payload is never updated after Save.
package store

import (
	"context"
	"maps"
	"slices"

	"touristid/internal/credential/models"
	"touristid/pkg/domain"
	"touristid/pkg/platform/middleware/requesttime"
)

// newRecord assigns a fresh record id and stamps createdAt and status.
func newRecord(ctx context.Context, userID string, vc *models.VerifiableCredential, metadata models.Metadata) (*models.StoredCredentialRecord, error) {
	now := requesttime.Now(ctx).UTC()
	recordID, err := domain.NewRecordID(now)
	if err != nil {
		return nil, err
	}
	metadata.CreatedAt = now
	metadata.Status = models.StatusActive
	return &models.StoredCredentialRecord{
		ID:         recordID,
		UserID:     userID,
		Credential: cloneCredential(*vc),
		Metadata:   metadata,
	}, nil
}

func cloneCredential(vc models.VerifiableCredential) models.VerifiableCredential {
	vc.Context = slices.Clone(vc.Context)
	vc.Type = slices.Clone(vc.Type)
	vc.CredentialSubject = maps.Clone(vc.CredentialSubject)
	if vc.Proof != nil {
		proof := *vc.Proof
		vc.Proof = &proof
	}
	return vc
}
