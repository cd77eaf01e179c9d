package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the authenticated caller through a request.
type RequestData struct {
	TokenString string
	UserID      uint
	Email       string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
