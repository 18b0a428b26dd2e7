package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"touristid/internal/credential/models"
	"touristid/internal/sentinel"
)

// CredentialsCollection is the MongoDB collection holding credential records.
const CredentialsCollection = "credentials"

type mongoRecord struct {
	Key        string          `bson:"_id"`
	UserID     string          `bson:"userId"`
	RecordID   string          `bson:"id"`
	Credential bson.Raw        `bson:"credential"`
	Metadata   models.Metadata `bson:"metadata"`
}

// MongoStore persists one document per credential, unique on (userId, id).
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(CredentialsCollection)}
}

// EnsureIndexes creates the unique (userId, id) index lookups rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_record"),
	})
	if err != nil {
		return fmt.Errorf("create credential index: %w", err)
	}
	return nil
}

// documentKey length-prefixes the user id so no (userID, recordID) pair
// collides with another, whatever characters either contains.
func documentKey(userID, recordID string) string {
	return fmt.Sprintf("%d:%s/%s", len(userID), userID, recordID)
}

func recordFilter(userID, recordID string) bson.M {
	return bson.M{"userId": userID, "id": recordID}
}

func (s *MongoStore) Save(ctx context.Context, userID string, vc *models.VerifiableCredential, metadata models.Metadata) (string, error) {
	record, err := newRecord(ctx, userID, vc, metadata)
	if err != nil {
		return "", err
	}
	doc, err := toMongoRecord(record)
	if err != nil {
		return "", err
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", sentinel.ErrAlreadyExists
		}
		return "", fmt.Errorf("save credential: %w", err)
	}
	return record.ID, nil
}

func (s *MongoStore) Get(ctx context.Context, userID, recordID string) (*models.StoredCredentialRecord, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, recordFilter(userID, recordID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return fromMongoRecord(&doc)
}

// The credential goes through extended JSON so its JSON shape (including
// the @context key) is preserved exactly.
func toMongoRecord(record *models.StoredCredentialRecord) (*mongoRecord, error) {
	credentialJSON, err := json.Marshal(record.Credential)
	if err != nil {
		return nil, fmt.Errorf("marshal credential: %w", err)
	}
	var raw bson.Raw
	if err := bson.UnmarshalExtJSON(credentialJSON, false, &raw); err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}
	return &mongoRecord{
		Key:        documentKey(record.UserID, record.ID),
		UserID:     record.UserID,
		RecordID:   record.ID,
		Credential: raw,
		Metadata:   record.Metadata,
	}, nil
}

func fromMongoRecord(doc *mongoRecord) (*models.StoredCredentialRecord, error) {
	credentialJSON, err := bson.MarshalExtJSON(doc.Credential, false, false)
	if err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	record := &models.StoredCredentialRecord{
		ID:       doc.RecordID,
		UserID:   doc.UserID,
		Metadata: doc.Metadata,
	}
	if err := json.Unmarshal(credentialJSON, &record.Credential); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return record, nil
}
