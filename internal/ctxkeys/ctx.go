package ctxkeys

import (
	"context"

	"github.com/templui/catalog/internal/model"
)

type key int

const (
	userKey key = iota
	tokenKey
)

// User is the authenticated user, or nil for anonymous requests
func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// Token is the access token the current request authenticated with
func Token(ctx context.Context) *model.Token {
	token, _ := ctx.Value(tokenKey).(*model.Token)
	return token
}

func WithToken(ctx context.Context, token *model.Token) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}
