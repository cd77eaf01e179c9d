package ctxutil

import (
	"context"
	"testing"
)

func TestRequestDataRoundTrip(t *testing.T) {
	ctx := WithRequestData(context.Background(), &RequestData{UserID: 4, Email: "a@b.c"})
	rd := GetRequestData(ctx)
	if rd == nil || rd.UserID != 4 {
		t.Fatalf("unexpected request data: %+v", rd)
	}
	if GetRequestData(context.Background()) != nil {
		t.Fatalf("expected nil on empty context")
	}
	if GetTraceData(context.Background()) != nil {
		t.Fatalf("expected nil trace data")
	}
}
