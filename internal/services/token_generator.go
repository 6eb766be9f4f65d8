package services

import (
	"crypto/rand"

	"gorm.io/gorm"

	"ownership-api/internal/models"
)

const (
	tokenLength      = 64
	maxTokenAttempts = 5
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenGenerator produces unguessable invitation tokens, collision-checked
// against existing invitations.
type TokenGenerator struct {
	db *gorm.DB
}

// NewTokenGenerator creates a new TokenGenerator
func NewTokenGenerator(db *gorm.DB) *TokenGenerator {
	return &TokenGenerator{db: db}
}

// Generate returns a unique 64-character random token. With a 62-character
// alphabet collisions are practically unreachable, but the check is bounded
// rather than looped forever.
func (g *TokenGenerator) Generate() (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := randomToken(tokenLength)
		if err != nil {
			return "", err
		}

		var count int64
		if err := g.db.Model(&models.TenantInvitation{}).Where("token = ?", token).Count(&count).Error; err != nil {
			return "", err
		}

		if count == 0 {
			return token, nil
		}
	}

	return "", ErrTokenExhausted
}

// randomToken draws n characters from the token alphabet using crypto/rand.
// Bytes >= 248 are discarded so the modulo stays uniform over 62 characters.
func randomToken(n int) (string, error) {
	out := make([]byte, n)
	buf := make([]byte, n)

	filled := 0
	for filled < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 248 {
				continue
			}
			out[filled] = tokenAlphabet[int(b)%len(tokenAlphabet)]
			filled++
			if filled == n {
				break
			}
		}
	}

	return string(out), nil
}
