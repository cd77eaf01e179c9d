package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"senha", "hunter2",
		"access_token", "abc",
		"crianca_id", 7,
		"user_id", 3,
		"dangling",
	})
	if len(kv) != 9 {
		t.Fatalf("unexpected length: %d", len(kv))
	}
	if kv[1] != "[REDACTED]" || kv[3] != "[REDACTED]" {
		t.Fatalf("secrets not redacted: %+v", kv)
	}
	if kv[5] != 7 {
		t.Fatalf("plain value changed: %+v", kv[5])
	}
	if s, ok := kv[7].(string); !ok || len(s) != len("hash:")+12 {
		t.Fatalf("user_id not hashed: %+v", kv[7])
	}
	if kv[8] != "dangling" {
		t.Fatalf("dangling key dropped: %+v", kv)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJpZCI6MSwiZW1haWwiOiJ4In0.sig") {
		t.Fatalf("expected jwt-shaped string to match")
	}
	if looksLikeJWT("plain.text") {
		t.Fatalf("unexpected match")
	}
}
