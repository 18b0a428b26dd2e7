package vc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"touristid/internal/artifact"
	jwttoken "touristid/internal/jwt_token"
	"touristid/pkg/requestcontext"
)

const pngDataURLPrefix = "data:image/png;base64,"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetTokenSecret() string
	RememberIssued() error
	IssuedField(field string) (any, error)
}

// RegisterSteps registers credential issuance and verification steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &vcSteps{tc: tc}

	// Issuance steps
	ctx.Step(`^I issue a credential for "([^"]*)" from "([^"]*)" with emergency contact "([^"]*)"$`, steps.issueCredential)
	ctx.Step(`^a credential has been issued for "([^"]*)" from "([^"]*)"$`, steps.credentialHasBeenIssued)
	ctx.Step(`^I issue a credential without "([^"]*)"$`, steps.issueWithout)
	ctx.Step(`^I look up the issuance$`, steps.lookUpIssuance)

	// Verification steps
	ctx.Step(`^I verify the issued credential by its access token$`, steps.verifyByToken)
	ctx.Step(`^I open the verification link from the QR code$`, steps.openQRLink)
	ctx.Step(`^I verify with an access token that expired (\d+) minutes ago$`, steps.verifyWithExpiredToken)
	ctx.Step(`^I verify with the access token "([^"]*)"$`, steps.verifyWithToken)
	ctx.Step(`^I verify the issued credential directly$`, steps.verifyDirectly)
	ctx.Step(`^I verify the issued credential directly with "([^"]*)" changed to "([^"]*)"$`, steps.verifyDirectlyWithChange)

	// Document steps
	ctx.Step(`^I download the issued credential document$`, steps.downloadDocument)
	ctx.Step(`^the response body should be a PDF document$`, steps.bodyShouldBePDF)

	// Artifact assertions
	ctx.Step(`^the QR code should encode the verification link for the access token$`, steps.qrEncodesVerifyLink)
}

type vcSteps struct {
	tc TestContext
}

func touristBody(fullName, nationality, emergencyContact string) map[string]any {
	return map[string]any{
		"fullName":         fullName,
		"nationality":      nationality,
		"emergencyContact": emergencyContact,
	}
}

func (s *vcSteps) issue(body map[string]any) error {
	if err := s.tc.POST("/api/issue-vc", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 200 {
		return s.tc.RememberIssued()
	}
	return nil
}

func (s *vcSteps) issueCredential(ctx context.Context, fullName, nationality, emergencyContact string) error {
	return s.issue(touristBody(fullName, nationality, emergencyContact))
}

func (s *vcSteps) credentialHasBeenIssued(ctx context.Context, fullName, nationality string) error {
	if err := s.issue(touristBody(fullName, nationality, "Front desk +1-555-0100")); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("issuance failed with status %d: %s", status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *vcSteps) issueWithout(ctx context.Context, field string) error {
	body := touristBody("Jane Roe", "Canada", "John Roe +1-555-0100")
	delete(body, field)
	return s.issue(body)
}

func (s *vcSteps) issuedString(field string) (string, error) {
	v, err := s.tc.IssuedField(field)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok || str == "" {
		return "", fmt.Errorf("issued field %s is not a non-empty string", field)
	}
	return str, nil
}

func (s *vcSteps) lookUpIssuance(ctx context.Context) error {
	id, err := s.issuedString("issuanceId")
	if err != nil {
		return err
	}
	return s.tc.GET("/api/issuances/"+url.PathEscape(id), nil)
}

func (s *vcSteps) verifyByToken(ctx context.Context) error {
	token, err := s.issuedString("accessToken")
	if err != nil {
		return err
	}
	return s.verifyWithToken(ctx, token)
}

func (s *vcSteps) verifyWithToken(ctx context.Context, token string) error {
	return s.tc.GET("/api/vc/verify?token="+url.QueryEscape(token), nil)
}

func (s *vcSteps) openQRLink(ctx context.Context) error {
	link, err := s.decodeQR()
	if err != nil {
		return err
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("QR code does not hold a URL: %w", err)
	}
	return s.tc.GET(parsed.Path+"?"+parsed.RawQuery, nil)
}

func (s *vcSteps) verifyWithExpiredToken(ctx context.Context, minutes int) error {
	userID, err := s.issuedString("userId")
	if err != nil {
		return err
	}
	vcID, err := s.issuedString("vcId")
	if err != nil {
		return err
	}

	ttl := time.Hour
	mintedAt := time.Now().Add(-ttl - time.Duration(minutes)*time.Minute)
	svc := jwttoken.NewJWTService(s.tc.GetTokenSecret(), ttl)
	token, err := svc.Mint(requestcontext.WithTime(ctx, mintedAt), userID, vcID, ttl)
	if err != nil {
		return err
	}
	return s.verifyWithToken(ctx, token)
}

func (s *vcSteps) verifyDirectly(ctx context.Context) error {
	return s.postVerify(nil)
}

func (s *vcSteps) verifyDirectlyWithChange(ctx context.Context, field, value string) error {
	return s.postVerify(func(subject map[string]any) {
		subject[field] = value
	})
}

func (s *vcSteps) postVerify(mutate func(subject map[string]any)) error {
	userID, err := s.issuedString("userId")
	if err != nil {
		return err
	}
	vcID, err := s.issuedString("vcId")
	if err != nil {
		return err
	}
	issued, err := s.tc.IssuedField("credential")
	if err != nil {
		return err
	}

	// Round-trip through JSON so mutations never touch the remembered response.
	raw, err := json.Marshal(issued)
	if err != nil {
		return err
	}
	var credential map[string]any
	if err := json.Unmarshal(raw, &credential); err != nil {
		return err
	}
	if mutate != nil {
		subject, ok := credential["credentialSubject"].(map[string]any)
		if !ok {
			return fmt.Errorf("issued credential has no credentialSubject")
		}
		mutate(subject)
	}

	return s.tc.POST("/api/vc/verify", map[string]any{
		"vcId":       vcID,
		"userId":     userID,
		"credential": credential,
	})
}

func (s *vcSteps) downloadDocument(ctx context.Context) error {
	path, err := s.issuedString("pdf.downloadUrl")
	if err != nil {
		return err
	}
	return s.tc.GET(path, nil)
}

func (s *vcSteps) bodyShouldBePDF(ctx context.Context) error {
	if !bytes.HasPrefix(s.tc.GetLastResponseBody(), []byte("%PDF-")) {
		return fmt.Errorf("response body is not a PDF document")
	}
	return nil
}

func (s *vcSteps) decodeQR() (string, error) {
	dataURL, err := s.issuedString("qrCode.dataURL")
	if err != nil {
		return "", err
	}
	encoded, ok := strings.CutPrefix(dataURL, pngDataURLPrefix)
	if !ok {
		return "", fmt.Errorf("qrCode.dataURL is not a PNG data URL")
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("qrCode.dataURL is not base64: %w", err)
	}
	return artifact.Decode(png)
}

func (s *vcSteps) qrEncodesVerifyLink(ctx context.Context) error {
	token, err := s.issuedString("accessToken")
	if err != nil {
		return err
	}
	link, err := s.decodeQR()
	if err != nil {
		return err
	}
	if !strings.HasSuffix(link, "/verify?token="+url.QueryEscape(token)) {
		return fmt.Errorf("QR code encodes %q, want the verification link for the access token", link)
	}
	data, err := s.issuedString("qrCode.data")
	if err != nil {
		return err
	}
	if data != link {
		return fmt.Errorf("qrCode.data is %q, want the encoded link %q", data, link)
	}
	return nil
}
