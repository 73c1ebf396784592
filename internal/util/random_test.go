package util

import (
	"strings"
	"testing"
)

func TestGenerateAccessToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := GenerateAccessToken(6)
		if len(token) != 6 {
			t.Fatalf("len = %d", len(token))
		}
		for _, r := range token {
			if !strings.ContainsRune(accessTokenAlphabet, r) {
				t.Fatalf("unexpected character %q in %q", r, token)
			}
		}
		// 易混淆字符不该出现
		if strings.ContainsAny(token, "IO01") {
			t.Fatalf("ambiguous character in %q", token)
		}
		seen[token] = true
	}
	if len(seen) < 95 {
		t.Fatalf("too many collisions: %d unique of 100", len(seen))
	}
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(16)
	if len(s) != 16 {
		t.Fatalf("len = %d", len(s))
	}
	if s == GenerateRandomString(16) {
		t.Fatal("two draws should differ")
	}
}
