package catalog

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linkscribe/backend/internal/domain"
)

const (
	signingAlgorithm = "AWS4-HMAC-SHA256"
	signingService   = "ProductAdvertisingAPI"
	targetPrefix     = "com.catalog.paapi5.v1.ProductAdvertisingAPIv1."
)

// SignerConfig holds the credentials and endpoint for the signed transport
type SignerConfig struct {
	Host       string // e.g. "webservices.amazon.com"
	Region     string // e.g. "us-east-1"
	AccessKey  string
	SecretKey  string
	PartnerTag string
}

// Signer is the signed-request transport for the catalog API. It implements
// domain.CatalogTransport: one operation name plus a JSON payload in, the
// raw response body out.
type Signer struct {
	httpClient *http.Client
	cfg        SignerConfig
	now        func() time.Time // injectable for deterministic signing tests
}

// NewSigner creates the signed transport. Missing credentials are a fatal
// configuration error, surfaced immediately rather than on first use.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.PartnerTag == "" {
		return nil, domain.ErrMissingCredentials
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: catalog host is empty", domain.ErrMissingCredentials)
	}

	return &Signer{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: cfg,
		now: time.Now,
	}, nil
}

// Execute signs and sends one catalog API request and returns the response
// body. Non-2xx responses become errors wrapping domain.ErrCatalogAPIFailure
// with enough context to answer "which call failed and why".
func (s *Signer) Execute(ctx context.Context, operation string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", operation, err)
	}

	path := "/paapi5/" + strings.ToLower(operation)
	reqURL := "https://" + s.cfg.Host + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	ts := s.now().UTC()
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Host", s.cfg.Host)
	req.Header.Set("X-Amz-Date", ts.Format("20060102T150405Z"))
	req.Header.Set("X-Amz-Target", targetPrefix+operation)
	req.Header.Set("Authorization", s.authorizationHeader(path, operation, body, ts))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogAPIFailure, operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %v", domain.ErrCatalogAPIFailure, operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status %d, body: %s",
			domain.ErrCatalogAPIFailure, operation, resp.StatusCode, truncate(respBody, 200))
	}

	return respBody, nil
}

// authorizationHeader builds the SigV4-style Authorization value: a signature
// over the canonical request, scoped to date/region/service.
func (s *Signer) authorizationHeader(path, operation string, body []byte, ts time.Time) string {
	amzDate := ts.Format("20060102T150405Z")
	dateStamp := ts.Format("20060102")

	signedHeaders := "content-type;host;x-amz-date;x-amz-target"
	canonicalHeaders := strings.Join([]string{
		"content-type:application/json; charset=utf-8",
		"host:" + s.cfg.Host,
		"x-amz-date:" + amzDate,
		"x-amz-target:" + targetPrefix + operation,
	}, "\n") + "\n"

	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		path,
		"", // no query string
		canonicalHeaders,
		signedHeaders,
		hashHex(body),
	}, "\n")

	scope := strings.Join([]string{dateStamp, s.cfg.Region, signingService, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		amzDate,
		scope,
		hashHex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := deriveSigningKey(s.cfg.SecretKey, dateStamp, s.cfg.Region, signingService)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signingAlgorithm, s.cfg.AccessKey, scope, signedHeaders, signature)
}

// deriveSigningKey runs the HMAC chain secret -> date -> region -> service
func deriveSigningKey(secret, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// truncate limits error-message bodies so a large HTML error page does not
// flood the logs
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
