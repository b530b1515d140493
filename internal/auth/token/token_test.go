package token

import "testing"

func TestGenerateRandomTokenIsUniqueAndOpaque(t *testing.T) {
	a, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Fatal("expected two generated tokens to differ")
	}
	if len(a) != 43 { // 32 bytes, base64url without padding
		t.Fatalf("expected 43-char token, got %d", len(a))
	}
}

func TestHashSHA256IsStable(t *testing.T) {
	const tok = "refresh-token-value"
	first := HashSHA256(tok)
	if first != HashSHA256(tok) {
		t.Fatal("expected identical input to hash identically")
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if first == HashSHA256("other") {
		t.Fatal("expected different inputs to hash differently")
	}
}
