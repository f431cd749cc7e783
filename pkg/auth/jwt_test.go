package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/chainsafe/erc20-ledger/pkg/app/http"
)

const testIssuer = "https://issuer.test"

func newJWKSServer(t *testing.T, kid string, pub *rsa.PublicKey) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		apphttp.WriteJSON(w, http.StatusOK, JWKS{Keys: []JWK{{
			Kid: kid,
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTValidator_Caller(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv, _ := newJWKSServer(t, "k1", &key.PublicKey)

	v := NewJWTValidator(srv.URL, testIssuer, "")
	require.True(t, v.IsConfigured())

	caller := common.HexToAddress("0x3000000000000000000000000000000000000003")
	tok := signToken(t, key, "k1", jwt.MapClaims{
		"iss":               testIssuer,
		"exp":               time.Now().Add(time.Hour).Unix(),
		DefaultAddressClaim: caller.Hex(),
	})

	got, err := v.Caller(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestJWTValidator_Rejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv, _ := newJWKSServer(t, "k1", &key.PublicKey)
	v := NewJWTValidator(srv.URL, testIssuer, "sub")

	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name  string
		token string
	}{
		{"wrong issuer", signToken(t, key, "k1", jwt.MapClaims{"iss": "other", "exp": exp, "sub": "0x3000000000000000000000000000000000000003"})},
		{"expired", signToken(t, key, "k1", jwt.MapClaims{"iss": testIssuer, "exp": time.Now().Add(-time.Hour).Unix(), "sub": "0x3000000000000000000000000000000000000003"})},
		{"no exp", signToken(t, key, "k1", jwt.MapClaims{"iss": testIssuer, "sub": "0x3000000000000000000000000000000000000003"})},
		{"unknown kid", signToken(t, key, "k2", jwt.MapClaims{"iss": testIssuer, "exp": exp, "sub": "0x3000000000000000000000000000000000000003"})},
		{"missing claim", signToken(t, key, "k1", jwt.MapClaims{"iss": testIssuer, "exp": exp})},
		{"bad address", signToken(t, key, "k1", jwt.MapClaims{"iss": testIssuer, "exp": exp, "sub": "alice"})},
		{"garbage", "not.a.jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Caller(context.Background(), tc.token)
			require.Error(t, err)
		})
	}
}

func TestJWTValidator_UnknownKidRefreshIsThrottled(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv, hits := newJWKSServer(t, "k1", &key.PublicKey)
	v := NewJWTValidator(srv.URL, "", "")

	exp := time.Now().Add(time.Hour).Unix()
	caller := "0x3000000000000000000000000000000000000003"
	for i := 0; i < 3; i++ {
		_, err := v.Caller(context.Background(), signToken(t, key, "rotated", jwt.MapClaims{"exp": exp, DefaultAddressClaim: caller}))
		assert.ErrorIs(t, err, errUnknownKey)
	}
	assert.Equal(t, int32(1), hits.Load())

	// Known keys are served from the cache.
	_, err = v.Caller(context.Background(), signToken(t, key, "k1", jwt.MapClaims{"exp": exp, DefaultAddressClaim: caller}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestJWK_RSAKey(t *testing.T) {
	_, err := JWK{Kid: "ec", Kty: "EC"}.rsaKey()
	assert.Error(t, err)
	_, err = JWK{Kid: "enc", Kty: "RSA", Use: "enc"}.rsaKey()
	assert.Error(t, err)
	_, err = JWK{Kid: "bad", Kty: "RSA", N: "!!", E: "AQAB"}.rsaKey()
	assert.Error(t, err)
}

func TestJWTValidator_NotConfigured(t *testing.T) {
	v := NewJWTValidator("", "", "")
	assert.False(t, v.IsConfigured())
	_, err := v.Caller(context.Background(), "x.y.z")
	assert.ErrorContains(t, err, "not configured")
}
