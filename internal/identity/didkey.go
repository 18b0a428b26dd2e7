package identity

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	didKeyPrefix = "did:key:"
	// multibase prefix for base58btc
	multibaseBase58BTC = "z"
)

// multicodec varint for ed25519-pub
var ed25519Multicodec = []byte{0xed, 0x01}

var errInvalidDIDKey = errors.New("invalid did:key identifier")

// encodeMultibase returns the base58btc multibase form of an Ed25519 public key.
func encodeMultibase(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(ed25519Multicodec)+len(pub))
	buf = append(buf, ed25519Multicodec...)
	buf = append(buf, pub...)
	return multibaseBase58BTC + base58.Encode(buf)
}

// DIDFromPublicKey derives the did:key identifier for an Ed25519 public key.
func DIDFromPublicKey(pub ed25519.PublicKey) string {
	return didKeyPrefix + encodeMultibase(pub)
}

// PublicKeyFromDID extracts the Ed25519 public key embedded in a did:key identifier.
func PublicKeyFromDID(did string) (ed25519.PublicKey, error) {
	fingerprint, ok := strings.CutPrefix(did, didKeyPrefix)
	if !ok {
		return nil, errInvalidDIDKey
	}
	return decodeMultibase(fingerprint)
}

func decodeMultibase(value string) (ed25519.PublicKey, error) {
	encoded, ok := strings.CutPrefix(value, multibaseBase58BTC)
	if !ok {
		return nil, errInvalidDIDKey
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, errInvalidDIDKey
	}
	if len(raw) != len(ed25519Multicodec)+ed25519.PublicKeySize || !bytes.HasPrefix(raw, ed25519Multicodec) {
		return nil, errInvalidDIDKey
	}
	return ed25519.PublicKey(raw[len(ed25519Multicodec):]), nil
}

// KeyID returns the verification method id for a did:key, which by convention
// repeats the fingerprint as the fragment.
func KeyID(did string) string {
	return did + "#" + strings.TrimPrefix(did, didKeyPrefix)
}
