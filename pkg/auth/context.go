package auth

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type contextKey string

const (
	// ContextKeyCaller is the context key for the authenticated caller address
	ContextKeyCaller contextKey = "caller"
	// ContextKeyMethod is the context key for how the caller was authenticated
	ContextKeyMethod contextKey = "auth_method"
)

// Authentication methods recorded in the request context.
const (
	MethodSignature = "eip191"
	MethodJWT       = "jwt"
)

// WithCaller adds the authenticated caller and the method used to the context
func WithCaller(ctx context.Context, caller common.Address, method string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyCaller, caller)
	return context.WithValue(ctx, ContextKeyMethod, method)
}

// CallerFromContext retrieves the authenticated caller from the context
func CallerFromContext(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(ContextKeyCaller).(common.Address)
	return caller, ok
}

// MethodFromContext retrieves the authentication method from the context
func MethodFromContext(ctx context.Context) string {
	m, _ := ctx.Value(ContextKeyMethod).(string)
	return m
}
