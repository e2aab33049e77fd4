package mefoundation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"me-linker/internal/infra/log"
	"me-linker/internal/wallets"
)

const (
	walletsPageURL   = "https://mefoundation.com/wallets"
	verifySessionURL = "https://api-mainnet.magiceden.io/v1/wallet/vestack/auth/verify-and-create-session"
	sessionURL       = "https://mefoundation.com/api/trpc/auth.session?batch=1&input="
	linkWalletURL    = "https://mefoundation.com/api/trpc/auth.linkWallet?batch=1"

	allocationEvent = "tge-airdrop-final"
	pointsSelector  = "button.inline-flex:nth-child(1)"
	eligibilityPath = "0.result.data.json.eligibility.eligibility"
)

// Eligibility is the airdrop status reported for a linked wallet.
type Eligibility string

const (
	Eligible   Eligibility = "eligible"
	Ineligible Eligibility = "ineligible"
	// Unknown means the response carried no eligibility field.
	Unknown Eligibility = ""
)

// Defined reports whether the service returned a status.
func (e Eligibility) Defined() bool { return e == Eligible || e == Ineligible }

// now is replaced in tests.
var now = time.Now

func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// AuthMessage is the challenge signed by the primary wallet.
func AuthMessage(nonce string, issuedAt time.Time) string {
	return fmt.Sprintf("URI: mefoundation.com\nChain ID: sol\nNonce: %s\nIssued At: %s", nonce, isoTimestamp(issuedAt))
}

// LinkMessage is the statement a wallet signs to attach itself to the claim wallet.
// The separators are a literal backslash followed by n; the service verifies that exact text.
func LinkMessage(chain wallets.Chain, allocationWallet, claimWallet string, issuedAt time.Time) string {
	return fmt.Sprintf(`URI: mefoundation.com\nIssued At: %s\nChain ID: %s\nAllocation Wallet: %s\nClaim Wallet: %s`,
		isoTimestamp(issuedAt), chain.Lower(), allocationWallet, claimWallet)
}

type verifyMetadata struct {
	Platform     string `json:"platform"`
	PatchVersion int    `json:"patchVersion"`
	MinorVersion int    `json:"minorVersion"`
	MajorVersion int    `json:"majorVersion"`
}

type verifyRequest struct {
	Wallet    string         `json:"wallet"`
	Signature string         `json:"signature"`
	Message   string         `json:"message"`
	Metadata  verifyMetadata `json:"metadata"`
}

// VerifyResult is the verify-and-create-session response.
type VerifyResult struct {
	Success bool `json:"success"`
}

// VerifyAndCreate submits a signed challenge to the Magic Eden wallet API.
func (c *Client) VerifyAndCreate(ctx context.Context) (VerifyResult, error) {
	return c.verifyAndCreate(ctx, c.Session())
}

func (c *Client) verifyAndCreate(ctx context.Context, sess *Session) (VerifyResult, error) {
	address, err := c.primary.Address()
	if err != nil {
		return VerifyResult{}, err
	}
	message := AuthMessage(c.nonce, now())
	signature, err := c.primary.SignMessage(message)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to sign auth message: %w", err)
	}

	body, err := json.Marshal(verifyRequest{
		Wallet:    address,
		Signature: signature,
		Message:   message,
		Metadata:  verifyMetadata{Platform: "ios", PatchVersion: 0, MinorVersion: 30, MajorVersion: 2},
	})
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	text, err := c.do(ctx, verifySessionURL, RequestOptions{
		Method:  "POST",
		Headers: verifySessionHeaders,
		Body:    body,
	}, sess, false)
	if err != nil {
		return VerifyResult{}, err
	}
	var res VerifyResult
	if err := decodeJSON(text, &res); err != nil {
		return VerifyResult{}, err
	}
	return res, nil
}

// Login calls the tRPC auth.session procedure with the client nonce.
// The response body is returned as is; its cookies land in the session.
func (c *Client) Login(ctx context.Context) (string, error) {
	return c.login(ctx, c.Session())
}

func (c *Client) login(ctx context.Context, sess *Session) (string, error) {
	input := fmt.Sprintf(`{"0":{"json":{"uuid":"%s"}}}`, c.nonce)
	return c.do(ctx, sessionURL+url.QueryEscape(input), RequestOptions{
		Method:  "GET",
		Headers: sessionHeaders,
	}, sess, false)
}

type linkWalletInput struct {
	Message         string `json:"message"`
	Chain           string `json:"chain"`
	Wallet          string `json:"wallet"`
	Signature       string `json:"signature"`
	AllocationEvent string `json:"allocationEvent"`
	IsLedger        bool   `json:"isLedger"`
}

type trpcJSON[T any] struct {
	JSON T `json:"json"`
}

// LinkWallet signs the link statement with w and submits it.
// A well-formed response without an eligibility field yields Unknown and no error.
func (c *Client) LinkWallet(ctx context.Context, w wallets.Wallet) (Eligibility, error) {
	claimWallet, err := c.primary.Address()
	if err != nil {
		return Unknown, err
	}
	address, err := w.Address()
	if err != nil {
		return Unknown, err
	}

	message := LinkMessage(w.Chain(), address, claimWallet, now())
	signature, err := w.SignMessage(message)
	if err != nil {
		return Unknown, fmt.Errorf("failed to sign link message: %w", err)
	}

	body, err := json.Marshal(map[string]trpcJSON[linkWalletInput]{
		"0": {JSON: linkWalletInput{
			Message:         message,
			Chain:           w.Chain().Lower(),
			Wallet:          address,
			Signature:       signature,
			AllocationEvent: allocationEvent,
			IsLedger:        false,
		}},
	})
	if err != nil {
		return Unknown, fmt.Errorf("failed to marshal request body: %w", err)
	}

	text, err := c.RequestText(ctx, linkWalletURL, RequestOptions{
		Method:  "POST",
		Headers: linkWalletHeaders,
		Body:    body,
	})
	if err != nil {
		return Unknown, err
	}
	return parseEligibility(text)
}

func parseEligibility(body string) (Eligibility, error) {
	if !gjson.Valid(body) {
		return Unknown, fmt.Errorf("%w: link response is not JSON", ErrParse)
	}
	switch v := Eligibility(gjson.Get(body, eligibilityPath).String()); v {
	case Eligible, Ineligible:
		return v, nil
	default:
		if msg := gjson.Get(body, "0.error.json.message"); msg.Exists() {
			log.LogDebug("Link wallet rejected", zap.String("message", msg.String()))
		}
		return Unknown, nil
	}
}

// FetchTokens scrapes the points total of all linked wallets from the wallets page.
func (c *Client) FetchTokens(ctx context.Context) (float64, error) {
	html, err := c.RequestText(ctx, walletsPageURL, RequestOptions{
		Method:  "GET",
		Headers: walletsPageHeaders,
	})
	if err != nil {
		return 0, err
	}
	return parsePoints(html)
}

func parsePoints(html string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	text := strings.Replace(doc.Find(pointsSelector).Text(), ",", "", 1)
	value, ok := leadingFloat(strings.TrimSpace(text))
	if !ok {
		return 0, fmt.Errorf("%w: no points value in %q", ErrParse, text)
	}
	return value, nil
}

// leadingFloat parses the longest numeric prefix of s, the way the page renders "1234.5 ME".
func leadingFloat(s string) (float64, bool) {
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
		end = i + 1
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
