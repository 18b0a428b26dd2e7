// Package keystore holds DID key material backends for the identity provider.
package keystore

import (
	"fmt"

	"touristid/internal/sentinel"
)

// ErrKeyExists is returned by Put when the DID is already registered.
var ErrKeyExists = fmt.Errorf("key already registered: %w", sentinel.ErrAlreadyExists)
