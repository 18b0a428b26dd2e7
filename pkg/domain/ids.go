// Package domain holds identifier formats shared across the service.
package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 9
	// largest multiple of 36 that fits in a byte; higher bytes are rejected
	// to keep the alphabet uniformly distributed
	base36Cutoff = 252

	recordIDPrefix = "vc"
	userIDPrefix   = "user"
)

// RecordIDPattern matches credential record ids.
var RecordIDPattern = regexp.MustCompile(`^vc_\d+_[a-z0-9]+$`)

// NewRecordID returns a credential record id of the form vc_<unixMillis>_<9 base36 chars>.
func NewRecordID(now time.Time) (string, error) {
	return newPrefixedID(recordIDPrefix, now, rand.Reader)
}

// NewUserID returns a generated user id of the form user_<unixMillis>_<9 base36 chars>.
func NewUserID(now time.Time) (string, error) {
	return newPrefixedID(userIDPrefix, now, rand.Reader)
}

// NewIssuanceID returns a lexically sortable ULID for an issuance run.
func NewIssuanceID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

func newPrefixedID(prefix string, now time.Time, random io.Reader) (string, error) {
	suffix, err := randomBase36(random, suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", prefix, err)
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix), nil
}

func randomBase36(random io.Reader, n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= base36Cutoff {
				continue
			}
			out = append(out, base36Alphabet[b%36])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
