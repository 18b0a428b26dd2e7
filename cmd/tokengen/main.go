// Package main provides a CLI tool for minting and inspecting credential access
// tokens for local development. Tokens use the dev signing key unless -secret
// or VC_TOKEN_SECRET is set, so they will NOT work against production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"touristid/internal/artifact"
	jwttoken "touristid/internal/jwt_token"
	"touristid/pkg/domain"
)

const (
	// Dev signing key - matches config.go when VC_TOKEN_SECRET is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultBaseURL = "http://localhost:8080"
)

type tokenOutput struct {
	Token     string         `json:"token"`
	ExpiresIn string         `json:"expires_in,omitempty"`
	VerifyURL string         `json:"verify_url,omitempty"`
	QRFile    string         `json:"qr_file,omitempty"`
	Claims    map[string]any `json:"claims,omitempty"`
}

func main() {
	mintCmd := flag.NewFlagSet("mint", flag.ExitOnError)
	mintUserID := mintCmd.String("user-id", "", "Tourist user id. Generated if empty.")
	mintVCID := mintCmd.String("vc-id", "", "Stored credential id (required)")
	mintTTL := mintCmd.Duration("ttl", jwttoken.DefaultTTL, "Token time-to-live")
	mintBaseURL := mintCmd.String("base-url", defaultBaseURL, "Verification host encoded in the link")
	mintQR := mintCmd.String("qr", "", "Write the verification QR code PNG to this file")
	mintSecret := mintCmd.String("secret", "", "Signing secret (defaults to VC_TOKEN_SECRET or the dev key)")
	mintJSON := mintCmd.Bool("json", false, "Output as JSON")

	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)
	inspectSecret := inspectCmd.String("secret", "", "Signing secret (defaults to VC_TOKEN_SECRET or the dev key)")
	inspectJSON := inspectCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "mint":
		_ = mintCmd.Parse(os.Args[2:])
		mint(*mintUserID, *mintVCID, *mintTTL, *mintBaseURL, *mintQR, signingKey(*mintSecret), *mintJSON)
	case "inspect":
		_ = inspectCmd.Parse(os.Args[2:])
		if inspectCmd.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "inspect expects exactly one token argument")
			os.Exit(1)
		}
		inspect(inspectCmd.Arg(0), signingKey(*inspectSecret), *inspectJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Mint and inspect credential access tokens

WARNING: Tokens use the dev signing key unless -secret or VC_TOKEN_SECRET is set.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  mint      Mint an access token for a stored credential
  inspect   Validate a token and print its claims

Examples:
  # Mint a token for an existing credential
  tokengen mint -user-id user_1 -vc-id vc_1700000000000_ab12cd34e

  # Mint a short-lived token and write its QR code
  tokengen mint -vc-id vc_1 -ttl 5m -qr verify.png

  # Check whether a token is still valid
  tokengen inspect eyJhbGciOi...

Use "tokengen <command> -h" for more information about a command.`)
}

func signingKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("VC_TOKEN_SECRET"); env != "" {
		return env
	}
	return devSigningKey
}

func mint(userID, vcID string, ttl time.Duration, baseURL, qrFile, secret string, jsonOutput bool) {
	if vcID == "" {
		fmt.Fprintln(os.Stderr, "-vc-id is required")
		os.Exit(1)
	}
	if userID == "" {
		generated, err := domain.NewUserID(time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating user id: %v\n", err)
			os.Exit(1)
		}
		userID = generated
	}

	svc := jwttoken.NewJWTService(secret, ttl)
	token, err := svc.Mint(context.Background(), userID, vcID, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error minting token: %v\n", err)
		os.Exit(1)
	}

	art, err := artifact.New(svc, baseURL, ttl).ForToken(token, baseURL, artifact.DefaultKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding verification link: %v\n", err)
		os.Exit(1)
	}
	if qrFile != "" {
		if err := os.WriteFile(qrFile, art.ImageData, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing QR code: %v\n", err)
			os.Exit(1)
		}
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			VerifyURL: art.PlaintextURL,
			QRFile:    qrFile,
			Claims: map[string]any{
				"userId": userID,
				"vcId":   vcID,
				"type":   jwttoken.TokenTypeAccess,
			},
		})
		return
	}

	fmt.Println("Credential Access Token")
	fmt.Println("=======================")
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("User ID:     %s\n", userID)
	fmt.Printf("VC ID:       %s\n", vcID)
	if qrFile != "" {
		fmt.Printf("QR Code:     %s\n", qrFile)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Verify:")
	fmt.Println("  " + art.PlaintextURL)
}

func inspect(token, secret string, jsonOutput bool) {
	svc := jwttoken.NewJWTService(secret, jwttoken.DefaultTTL)
	claims, err := svc.Validate(context.Background(), token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Token rejected (%s): %v\n", jwttoken.FailureReason(err), err)
		os.Exit(1)
	}

	expiresAt := claims.ExpiresAt.Time.UTC()
	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: time.Until(expiresAt).Round(time.Second).String(),
			Claims: map[string]any{
				"userId": claims.UserID,
				"vcId":   claims.VCID,
				"type":   claims.Type,
				"exp":    expiresAt.Format(time.RFC3339),
			},
		})
		return
	}

	fmt.Println("Token valid")
	fmt.Printf("User ID:     %s\n", claims.UserID)
	fmt.Printf("VC ID:       %s\n", claims.VCID)
	fmt.Printf("Expires At:  %s\n", expiresAt.Format(time.RFC3339))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
