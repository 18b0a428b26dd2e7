package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/internal/credential/models"
	"touristid/internal/sentinel"
	"touristid/pkg/domain"
	"touristid/pkg/platform/middleware/requesttime"
	"touristid/pkg/testutil"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), now)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tourist_credentials")).
		WithArgs("user_1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), models.StatusActive, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.Save(ctx, "user_1", testutil.NewCredentialBuilder().Build(), testutil.NewMetadata())
	require.NoError(t, err)
	assert.Regexp(t, domain.RecordIDPattern, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveError(t *testing.T) {
	store, mock := newMockStore(t)
	dbErr := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tourist_credentials")).WillReturnError(dbErr)

	_, err := store.Save(context.Background(), "user_1", testutil.NewCredentialBuilder().Build(), testutil.NewMetadata())
	assert.ErrorIs(t, err, dbErr)
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockStore(t)

	vc := testutil.NewCredentialBuilder().Build()
	meta := testutil.NewMetadata()
	meta.Status = models.StatusActive
	meta.CreatedAt = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	credentialJSON, _ := json.Marshal(vc)
	metadataJSON, _ := json.Marshal(meta)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT credential, metadata, status FROM tourist_credentials")).
		WithArgs("user_1", "vc_1_abc").
		WillReturnRows(sqlmock.NewRows([]string{"credential", "metadata", "status"}).
			AddRow(credentialJSON, metadataJSON, "suspended"))

	got, err := store.Get(context.Background(), "user_1", "vc_1_abc")
	require.NoError(t, err)
	assert.Equal(t, "vc_1_abc", got.ID)
	assert.Equal(t, "user_1", got.UserID)
	assert.Equal(t, vc.Issuer.ID, got.Credential.Issuer.ID)
	assert.Equal(t, "Jane Roe", got.Credential.CredentialSubject["fullName"])
	assert.Equal(t, "suspended", got.Metadata.Status, "status column wins")
	assert.True(t, meta.CreatedAt.Equal(got.Metadata.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT credential, metadata, status")).
		WithArgs("user_1", "vc_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "user_1", "vc_missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_GetCorruptPayload(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT credential, metadata, status")).
		WillReturnRows(sqlmock.NewRows([]string{"credential", "metadata", "status"}).
			AddRow([]byte("{"), []byte("{}"), "active"))

	_, err := store.Get(context.Background(), "user_1", "vc_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sentinel.ErrNotFound)
}
