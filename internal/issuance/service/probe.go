package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"touristid/internal/artifact"
	idmodels "touristid/internal/identity/models"
	"touristid/internal/issuance/models"
	"touristid/internal/issuance/tracer"
	"touristid/pkg/requestcontext"
)

// Probe exercises identity creation and resolution with a throwaway DID.
// Issuance and verification are reported ready when both succeed. The QR
// round trip is reported separately and never fails the probe.
func (s *Service) Probe(ctx context.Context) (result *models.ProbeResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanProbe)
	defer func() { span.End(err) }()

	did, err := s.identities.CreateIdentity(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "probe failed to create identity", "error", err)
		return nil, err
	}
	doc, err := s.identities.ResolveIdentity(ctx, did.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "probe failed to resolve identity", "did", did.ID, "error", err)
		return nil, err
	}

	return &models.ProbeResult{
		Capabilities: models.Capabilities{
			DIDGeneration:          true,
			DIDResolution:          true,
			CredentialIssuance:     true,
			CredentialVerification: true,
		},
		TestResults: models.ProbeTestResults{
			DID:         did.ID,
			Resolved:    doc != nil && doc.ID == did.ID,
			KeyCount:    len(did.Keys),
			KeyTypes:    lo.Uniq(lo.Map(did.Keys, func(k idmodels.KeyEntry, _ int) string { return k.Type })),
			QRRoundTrip: s.probeQR(ctx),
		},
		CheckedAt: requestcontext.Now(ctx),
	}, nil
}

const probeURL = "https://probe.invalid/verify?token=probe"

func (s *Service) probeQR(ctx context.Context) bool {
	if err := qrRoundTrip(probeURL, artifact.Decode); err != nil {
		s.logger.WarnContext(ctx, "probe QR round trip failed", "error", err)
		return false
	}
	return true
}

func qrRoundTrip(content string, decode func([]byte) (string, error)) error {
	img, err := artifact.Encode(content)
	if err != nil {
		return err
	}
	text, err := decode(img)
	if err != nil {
		return err
	}
	if text != content {
		return fmt.Errorf("decoded %q, want %q", text, content)
	}
	return nil
}
