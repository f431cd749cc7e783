package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAddressClaim names the claim carrying the caller's EVM address.
const DefaultAddressClaim = "evm_address"

const (
	jwksFetchTimeout = 10 * time.Second
	// Unknown key ids trigger at most one JWKS fetch per interval.
	minRefreshInterval = 30 * time.Second
	clockSkew          = 30 * time.Second
)

var errUnknownKey = errors.New("unknown signing key")

// JWKS is a JSON Web Key Set document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK is one entry of a key set. Only RSA signing keys are used.
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k JWK) rsaKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
		return nil, fmt.Errorf("key %s is not an RSA signing key", k.Kid)
	}
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("key %s modulus: %w", k.Kid, err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("key %s exponent: %w", k.Kid, err)
	}
	exp := new(big.Int).SetBytes(e)
	if len(n) == 0 || !exp.IsInt64() || exp.Int64() < 2 {
		return nil, fmt.Errorf("key %s has invalid parameters", k.Kid)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}

// keySet caches the RSA keys of a JWKS endpoint by key id.
type keySet struct {
	url    string
	client *http.Client

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	lastRefresh time.Time
}

func (s *keySet) get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.keys[kid]; ok {
		return key, nil
	}
	if time.Since(s.lastRefresh) < minRefreshInterval {
		return nil, fmt.Errorf("%w %q", errUnknownKey, kid)
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	if key, ok := s.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownKey, kid)
}

// refresh replaces the cached keys. Callers hold mu.
func (s *keySet) refresh(ctx context.Context) error {
	s.lastRefresh = time.Now()

	ctx, cancel := context.WithTimeout(ctx, jwksFetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("build JWKS request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch JWKS: status %d", resp.StatusCode)
	}

	var doc JWKS
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if key, err := k.rsaKey(); err == nil {
			keys[k.Kid] = key
		}
	}
	s.keys = keys
	return nil
}

// JWTValidator accepts RS256 bearer tokens signed by a key of the configured
// JWKS endpoint and maps them to the ledger account named in a claim.
type JWTValidator struct {
	keys         *keySet
	parser       *jwt.Parser
	addressClaim string
}

// NewJWTValidator creates a validator. An empty issuer accepts any issuer and
// an empty addressClaim falls back to DefaultAddressClaim.
func NewJWTValidator(jwksURL, issuer, addressClaim string) *JWTValidator {
	if addressClaim == "" {
		addressClaim = DefaultAddressClaim
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTValidator{
		keys: &keySet{
			url:    jwksURL,
			client: &http.Client{Timeout: jwksFetchTimeout},
		},
		parser:       jwt.NewParser(opts...),
		addressClaim: addressClaim,
	}
}

// IsConfigured reports whether a JWKS endpoint is set.
func (v *JWTValidator) IsConfigured() bool {
	return v.keys.url != ""
}

// Caller validates tokenString and returns the account in its address claim.
func (v *JWTValidator) Caller(ctx context.Context, tokenString string) (common.Address, error) {
	if !v.IsConfigured() {
		return common.Address{}, errors.New("JWKS URL not configured")
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token header has no kid")
		}
		return v.keys.get(ctx, kid)
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid bearer token: %w", err)
	}

	raw, ok := claims[v.addressClaim].(string)
	if !ok {
		return common.Address{}, fmt.Errorf("token has no %s claim", v.addressClaim)
	}
	return ParseAddress(raw)
}
