package services

import (
	"strings"
	"testing"
)

func TestGenerateTokenShape(t *testing.T) {
	db := setupTestDB(t)
	generator := NewTokenGenerator(db)

	token, err := generator.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	for _, r := range token {
		if !strings.ContainsRune(tokenAlphabet, r) {
			t.Errorf("token contains character %q outside the alphabet", r)
		}
	}
}

func TestGenerateTokenUniqueness(t *testing.T) {
	db := setupTestDB(t)
	generator := NewTokenGenerator(db)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := generator.Generate()
		if err != nil {
			t.Fatalf("Generate failed on iteration %d: %v", i, err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestRandomTokenUniformLength(t *testing.T) {
	for _, n := range []int{1, 16, 64, 100} {
		token, err := randomToken(n)
		if err != nil {
			t.Fatalf("randomToken(%d) failed: %v", n, err)
		}
		if len(token) != n {
			t.Errorf("randomToken(%d) length = %d", n, len(token))
		}
	}
}
