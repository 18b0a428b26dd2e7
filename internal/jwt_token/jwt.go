// Package jwttoken mints and validates the HS256 access tokens that link a
// verification URL to one stored credential.
package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/requestcontext"
)

// TokenTypeAccess marks tokens minted for credential access.
const TokenTypeAccess = "vc_access"

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = time.Hour

// Failure causes. They are wrapped inside an invalid_token domain error so
// callers can log and count them without exposing them to clients.
var (
	ErrExpired   = errors.New("token expired")
	ErrSignature = errors.New("token signature invalid")
	ErrMalformed = errors.New("token malformed")
	ErrWrongType = errors.New("token type mismatch")
)

// AccessTokenClaims represents the JWT claims for credential access tokens.
type AccessTokenClaims struct {
	UserID string `json:"userId"`
	VCID   string `json:"vcId"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// JWTService handles access token creation and validation. It is stateless:
// there is no revocation list.
type JWTService struct {
	signingKey []byte
	tokenTTL   time.Duration
}

func NewJWTService(signingKey string, tokenTTL time.Duration) *JWTService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTTL
	}
	return &JWTService{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// TTL returns the configured default lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.tokenTTL
}

// Mint issues a token for one credential record. A non-positive ttl uses the
// service default.
func (s *JWTService) Mint(ctx context.Context, userID, recordID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.tokenTTL
	}
	now := requestcontext.Now(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID: userID,
		VCID:   recordID,
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	return signed, nil
}

// Validate verifies signature, expiry and token type against the request clock.
// All rejections share one external message; the cause is reachable with errors.Is.
func (s *JWTService) Validate(ctx context.Context, tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	)
	if err != nil {
		return nil, invalidToken(classify(err))
	}
	if claims.Type != TokenTypeAccess {
		return nil, invalidToken(ErrWrongType)
	}
	if claims.UserID == "" || claims.VCID == "" {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "token payload is missing required claims")
	}
	return claims, nil
}

func invalidToken(cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeInvalidToken, "invalid or expired token")
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignature
	default:
		return ErrMalformed
	}
}

// FailureReason returns a short label for a Validate error, for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrSignature):
		return "signature"
	case errors.Is(err, ErrWrongType):
		return "wrong_type"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case dErrors.HasCode(err, dErrors.CodeMalformedPayload):
		return "missing_claims"
	default:
		return "unknown"
	}
}
