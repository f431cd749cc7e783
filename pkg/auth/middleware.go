package auth

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
	apphttp "github.com/chainsafe/erc20-ledger/pkg/app/http"
)

// SignatureHeader carries the EIP-191 signature over the raw request body.
const SignatureHeader = "X-Signature"

const maxBodyBytes = 1 << 20

// Authenticator resolves the caller of a mutating request and stores it in
// the request context.
type Authenticator struct {
	jwt    *JWTValidator
	logger *zap.Logger
}

// NewAuthenticator creates an Authenticator. jwt may be nil, in which case
// only body signatures are accepted.
func NewAuthenticator(jwt *JWTValidator, logger *zap.Logger) *Authenticator {
	return &Authenticator{jwt: jwt, logger: logger}
}

// Middleware rejects requests without a valid bearer token or body signature.
// The body stays readable for the next handler.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			apphttp.WriteError(w, r, apperrors.BadRequestError(err, "failed to read request"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		caller, method, err := a.authenticate(r, body)
		if err != nil {
			a.logger.Debug("request authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			apphttp.WriteError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller, method)))
	})
}

func (a *Authenticator) authenticate(r *http.Request, body []byte) (common.Address, string, error) {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if a.jwt == nil || !a.jwt.IsConfigured() {
			return common.Address{}, "", apperrors.UnAuthorizedError(nil, "bearer tokens are not accepted")
		}
		caller, err := a.jwt.Caller(r.Context(), bearer)
		if err != nil {
			return common.Address{}, "", apperrors.UnAuthorizedError(err, "invalid bearer token")
		}
		return caller, MethodJWT, nil
	}

	sig := r.Header.Get(SignatureHeader)
	if sig == "" {
		return common.Address{}, "", apperrors.UnAuthorizedError(errors.New("no credentials"), "signature required")
	}
	caller, err := VerifyEIP191Signature(body, sig)
	if err != nil {
		return common.Address{}, "", apperrors.UnAuthorizedError(err, "invalid signature")
	}
	return caller, MethodSignature, nil
}
