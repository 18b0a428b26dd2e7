// Package document renders a stored credential and its verification QR code
// as a printable single-page PDF.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/samber/lo"

	"touristid/internal/credential/models"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/middleware/requesttime"
)

const (
	MimeType = "application/pdf"

	pageCenter  = 105.0
	leftMargin  = 20.0
	lineHeight  = 8.0
	qrSize      = 50.0
	qrX         = 70.0
	qrImageName = "verification-qr"
	fontFamily  = "Helvetica"
)

// Footer lines printed under the QR code.
const (
	FooterScan       = "Scan the QR code above to verify this credential."
	FooterVerifiable = "This document contains a digitally verifiable credential."
	footerGenerated  = "Generated on: "
)

// Renderer builds credential PDFs.
type Renderer struct {
	compress bool
	logger   *slog.Logger
}

type Option func(*Renderer)

// WithCompression toggles stream compression. Enabled by default.
func WithCompression(enabled bool) Option {
	return func(r *Renderer) { r.compress = enabled }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out the record and the QR artifact on one A4 page.
func (r *Renderer) Render(ctx context.Context, record *models.StoredCredentialRecord, artifactPNG []byte) ([]byte, error) {
	if record == nil {
		return nil, dErrors.New(dErrors.CodeRender, "no credential to render")
	}
	if _, err := png.DecodeConfig(bytes.NewReader(artifactPNG)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRender, "verification artifact is not a PNG image")
	}

	now := requesttime.Now(ctx).UTC()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(now)
	pdf.SetTitle("Verifiable Credential "+record.ID, false)
	pdf.AddPage()

	// Core fonts are WinAnsi encoded; claim values arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(x, y float64, s string) { pdf.Text(x, y, tr(s)) }
	centered := func(y float64, s string) {
		s = tr(s)
		pdf.Text(pageCenter-pdf.GetStringWidth(s)/2, y, s)
	}

	pdf.SetFont(fontFamily, "B", 20)
	centered(30, "Verifiable Credential")

	pdf.SetFont(fontFamily, "B", 14)
	text(leftMargin, 50, "Credential Details:")

	pdf.SetFont(fontFamily, "", 10)
	y := 60.0
	for _, line := range detailLines(record) {
		text(leftMargin, y, line)
		y += lineHeight
	}

	if subject := record.Credential.CredentialSubject; len(subject) > 0 {
		y += 10
		pdf.SetFont(fontFamily, "B", 14)
		text(leftMargin, y, "Subject Information:")
		y += 10
		pdf.SetFont(fontFamily, "", 10)
		for _, line := range SubjectLines(subject) {
			text(leftMargin, y, line)
			y += lineHeight
		}
	}

	y += 20
	pdf.SetFont(fontFamily, "B", 14)
	text(leftMargin, y, "Verification QR Code:")
	y += 10

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(artifactPNG))
	pdf.ImageOptions(qrImageName, qrX, y, qrSize, qrSize, false, opts, 0, "")
	y += qrSize + 10

	pdf.SetFont(fontFamily, "", 8)
	centered(y, FooterScan)
	centered(y+5, FooterVerifiable)
	centered(y+20, footerGenerated+now.Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRender, "failed to render credential document")
	}
	if r.logger != nil {
		r.logger.DebugContext(ctx, "credential document rendered",
			"vc_id", record.ID,
			"bytes", buf.Len(),
		)
	}
	return buf.Bytes(), nil
}

func detailLines(record *models.StoredCredentialRecord) []string {
	issuedAt := "N/A"
	if !record.Metadata.CreatedAt.IsZero() {
		issuedAt = record.Metadata.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		"Credential ID: " + orNA(record.ID),
		"User ID: " + orNA(record.UserID),
		"Issued At: " + issuedAt,
		"Status: " + lo.Ternary(record.Metadata.Status == "", "Active", record.Metadata.Status),
	}
}

// SubjectLines formats every subject claim except id as "Label: value".
// Known claims come first in their fixed order; the rest follow sorted by key.
func SubjectLines(subject map[string]any) []string {
	known := lo.Filter(models.KnownSubjectKeys, func(k string, _ int) bool {
		_, ok := subject[k]
		return ok
	})
	extra := lo.Filter(lo.Keys(subject), func(k string, _ int) bool {
		return k != models.SubjectKeyID && !lo.Contains(models.KnownSubjectKeys, k)
	})
	sort.Strings(extra)

	return lo.Map(append(known, extra...), func(k string, _ int) string {
		return Humanize(k) + ": " + formatValue(subject[k])
	})
}

// Humanize turns a camelCase key into a title: "emergencyContact" -> "Emergency Contact".
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

func orNA(s string) string {
	return lo.Ternary(s == "", "N/A", s)
}
