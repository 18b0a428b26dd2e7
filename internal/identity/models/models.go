package models

import (
	"encoding/json"
	"time"
)

// KeyTypeEd25519 is the only key type the provider issues.
const KeyTypeEd25519 = "Ed25519"

// DID is the public view of a decentralized identifier.
type DID struct {
	ID   string     `json:"did"`
	Keys []KeyEntry `json:"keys"`
}

// KeyEntry describes one public key bound to a DID.
type KeyEntry struct {
	KID          string `json:"kid"`
	Type         string `json:"type"`
	PublicKeyHex string `json:"publicKeyHex"`
}

// StoredKey is the key store record for a DID. PrivateKey never leaves the
// identity package boundary.
type StoredKey struct {
	DID        string    `json:"did"`
	KeyType    string    `json:"keyType"`
	PublicKey  []byte    `json:"publicKey"`
	PrivateKey []byte    `json:"privateKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Document is a DID Document as returned by resolution.
type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	AssertionMethod    []string             `json:"assertionMethod"`
}

type VerificationMethod struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	Controller         string          `json:"controller"`
	PublicKeyJwk       json.RawMessage `json:"publicKeyJwk"`
	PublicKeyMultibase string          `json:"publicKeyMultibase"`
}
