// Package artifact turns a credential access token into a scannable QR image.
package artifact

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"

	dErrors "touristid/pkg/domain-errors"
)

const (
	// DefaultBaseURL is the verification host used when none is configured.
	DefaultBaseURL = "https://localhost:3000"
	// DefaultKind is the artifact kind when the caller does not pick one.
	DefaultKind = "presentation"

	imageSize   = 256
	imageMargin = 1
	mimeTypePNG = "image/png"

	verifyPath = "/verify"
)

// TokenMinter issues access tokens for stored credentials.
type TokenMinter interface {
	Mint(ctx context.Context, userID, recordID string, ttl time.Duration) (string, error)
}

// Artifact is a rendered verification QR code.
type Artifact struct {
	ImageData    []byte
	DataURI      string
	PlaintextURL string
	Kind         string
	Token        string
}

type Generator struct {
	tokens         TokenMinter
	defaultBaseURL string
	tokenTTL       time.Duration
}

// New creates a generator. An empty baseURL falls back to DefaultBaseURL.
func New(tokens TokenMinter, baseURL string, tokenTTL time.Duration) *Generator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Generator{
		tokens:         tokens,
		defaultBaseURL: strings.TrimRight(baseURL, "/"),
		tokenTTL:       tokenTTL,
	}
}

// Generate mints a fresh access token for the record and encodes its verification URL.
func (g *Generator) Generate(ctx context.Context, recordID, userID, baseURL, kind string) (*Artifact, error) {
	token, err := g.tokens.Mint(ctx, userID, recordID, g.tokenTTL)
	if err != nil {
		return nil, err
	}
	return g.ForToken(token, baseURL, kind)
}

// ForToken encodes the verification URL for an already minted token.
func (g *Generator) ForToken(token, baseURL, kind string) (*Artifact, error) {
	if kind == "" {
		kind = DefaultKind
	}
	target := g.VerifyURL(baseURL, token)
	img, err := Encode(target)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		ImageData:    img,
		DataURI:      "data:" + mimeTypePNG + ";base64," + base64.StdEncoding.EncodeToString(img),
		PlaintextURL: target,
		Kind:         kind,
		Token:        token,
	}, nil
}

// VerifyURL builds {baseURL}/verify?token={token}.
func (g *Generator) VerifyURL(baseURL, token string) string {
	if baseURL == "" {
		baseURL = g.defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + verifyPath + "?token=" + url.QueryEscape(token)
}

// Encode renders content as a 256x256 black-on-white PNG QR code with error
// correction level M and a one-module margin. Output is deterministic.
func Encode(content string) ([]byte, error) {
	hints := map[gozxing.EncodeHintType]any{
		gozxing.EncodeHintType_ERROR_CORRECTION: decoder.ErrorCorrectionLevel_M,
		gozxing.EncodeHintType_MARGIN:           imageMargin,
	}
	matrix, err := qrcode.NewQRCodeWriter().Encode(content, gozxing.BarcodeFormat_QR_CODE, imageSize, imageSize, hints)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode QR code")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, matrix); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode QR image")
	}
	return buf.Bytes(), nil
}

// Decode scans a PNG QR image and returns its text content.
func Decode(image []byte) (string, error) {
	img, err := png.Decode(bytes.NewReader(image))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "artifact is not a PNG image")
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "artifact image unreadable")
	}
	reader := qrcode.NewQRCodeReader()
	result, err := reader.Decode(bmp, map[gozxing.DecodeHintType]any{
		gozxing.DecodeHintType_PURE_BARCODE: true,
	})
	if err != nil {
		result, err = reader.Decode(bmp, nil)
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "no QR code found in artifact")
	}
	return result.GetText(), nil
}
