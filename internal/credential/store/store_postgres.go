package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"touristid/internal/credential/models"
	"touristid/internal/sentinel"
)

// PostgresStore persists credentials in the tourist_credentials table.
// Reads are unfiltered by end-user identity; the service connects with its own role.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, userID string, vc *models.VerifiableCredential, metadata models.Metadata) (string, error) {
	record, err := newRecord(ctx, userID, vc, metadata)
	if err != nil {
		return "", err
	}
	credentialJSON, err := json.Marshal(record.Credential)
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}
	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO tourist_credentials (user_id, id, credential, metadata, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.UserID,
		record.ID,
		credentialJSON,
		metadataJSON,
		record.Metadata.Status,
		record.Metadata.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("save credential: %w", err)
	}
	return record.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, recordID string) (*models.StoredCredentialRecord, error) {
	query := `
		SELECT credential, metadata, status
		FROM tourist_credentials
		WHERE user_id = $1 AND id = $2
	`
	var (
		credentialJSON []byte
		metadataJSON   []byte
		status         string
	)
	err := s.db.QueryRowContext(ctx, query, userID, recordID).Scan(&credentialJSON, &metadataJSON, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	record := &models.StoredCredentialRecord{ID: recordID, UserID: userID}
	if err := json.Unmarshal(credentialJSON, &record.Credential); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	// The status column is authoritative over the JSON copy.
	record.Metadata.Status = status
	return record, nil
}
