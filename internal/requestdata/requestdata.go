package requestdata

import (
	"context"
)

// RequestData carries the authenticated identity for one request.
type RequestData struct {
	UserID   int64
	Username string
}

type contextKey struct{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, contextKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, ok := ctx.Value(contextKey{}).(*RequestData)
	if !ok {
		return nil
	}
	return rd
}
