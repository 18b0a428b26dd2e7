// Package identity creates and resolves did:key identities backed by Ed25519 keys.
package identity

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/go-jose/go-jose/v3"

	"touristid/internal/identity/models"
	"touristid/internal/sentinel"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/middleware/requesttime"
)

// KeyStore holds DID key material.
// Error Contract:
// - Put returns an error wrapping sentinel.ErrAlreadyExists for a registered DID
// - Get returns sentinel.ErrNotFound when the DID is unknown
type KeyStore interface {
	Put(ctx context.Context, key models.StoredKey) error
	Get(ctx context.Context, did string) (*models.StoredKey, error)
	List(ctx context.Context) ([]string, error)
}

var documentContext = []string{
	"https://www.w3.org/ns/did/v1",
	"https://w3id.org/security/suites/jws-2020/v1",
}

const verificationMethodType = "JsonWebKey2020"

type Option func(*Provider)

// WithRandom replaces the entropy source used for key generation.
func WithRandom(r io.Reader) Option {
	return func(p *Provider) {
		p.random = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// Provider is the identity provider. All lookups are local to its key store.
type Provider struct {
	keys   KeyStore
	random io.Reader
	logger *slog.Logger
}

func NewProvider(keys KeyStore, opts ...Option) *Provider {
	p := &Provider{
		keys:   keys,
		random: rand.Reader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateIdentity generates a fresh Ed25519 key pair and registers its did:key.
func (p *Provider) CreateIdentity(ctx context.Context) (*models.DID, error) {
	pub, priv, err := ed25519.GenerateKey(p.random)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeKeyGeneration, "failed to generate key pair")
	}

	did := DIDFromPublicKey(pub)
	err = p.keys.Put(ctx, models.StoredKey{
		DID:        did,
		KeyType:    models.KeyTypeEd25519,
		PublicKey:  pub,
		PrivateKey: priv,
		CreatedAt:  requesttime.Now(ctx),
	})
	switch {
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return nil, dErrors.Wrap(err, dErrors.CodeKeyGeneration, "generated identity already registered")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store identity")
	}

	p.logger.DebugContext(ctx, "identity created", "did", did)
	return describe(did, pub), nil
}

// ResolveIdentity returns the DID Document for a locally registered DID.
func (p *Provider) ResolveIdentity(ctx context.Context, did string) (*models.Document, error) {
	key, err := p.load(ctx, did)
	if err != nil {
		return nil, err
	}
	return buildDocument(did, ed25519.PublicKey(key.PublicKey))
}

// Describe returns the public key listing for a registered DID.
func (p *Provider) Describe(ctx context.Context, did string) (*models.DID, error) {
	key, err := p.load(ctx, did)
	if err != nil {
		return nil, err
	}
	return describe(did, key.PublicKey), nil
}

// Signer returns the private key for a registered DID.
func (p *Provider) Signer(ctx context.Context, did string) (ed25519.PrivateKey, error) {
	key, err := p.keys.Get(ctx, did)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeSigning, "no key material for issuer")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load key material")
	}
	if len(key.PrivateKey) != ed25519.PrivateKeySize {
		return nil, dErrors.New(dErrors.CodeSigning, "unusable key material for issuer")
	}
	return ed25519.PrivateKey(key.PrivateKey), nil
}

func (p *Provider) load(ctx context.Context, did string) (*models.StoredKey, error) {
	key, err := p.keys.Get(ctx, did)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	if len(key.PublicKey) != ed25519.PublicKeySize {
		return nil, dErrors.New(dErrors.CodeInternal, "stored public key is malformed")
	}
	return key, nil
}

func describe(did string, pub []byte) *models.DID {
	return &models.DID{
		ID: did,
		Keys: []models.KeyEntry{{
			KID:          KeyID(did),
			Type:         models.KeyTypeEd25519,
			PublicKeyHex: hex.EncodeToString(pub),
		}},
	}
}

func buildDocument(did string, pub ed25519.PublicKey) (*models.Document, error) {
	vmID := KeyID(did)
	jwk, err := json.Marshal(jose.JSONWebKey{Key: pub, KeyID: vmID, Algorithm: string(jose.EdDSA)})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode public key")
	}
	return &models.Document{
		Context: documentContext,
		ID:      did,
		VerificationMethod: []models.VerificationMethod{{
			ID:                 vmID,
			Type:               verificationMethodType,
			Controller:         did,
			PublicKeyJwk:       jwk,
			PublicKeyMultibase: encodeMultibase(pub),
		}},
		Authentication:  []string{vmID},
		AssertionMethod: []string{vmID},
	}, nil
}

// PublicKeyFromDocument returns the Ed25519 key of the first verification
// method, read from its JWK.
func PublicKeyFromDocument(doc *models.Document) (ed25519.PublicKey, error) {
	if doc == nil || len(doc.VerificationMethod) == 0 {
		return nil, errors.New("document has no verification method")
	}
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(doc.VerificationMethod[0].PublicKeyJwk); err != nil {
		return nil, err
	}
	pub, ok := jwk.Key.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("verification method is not an Ed25519 key")
	}
	return pub, nil
}
