package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SecretPrefix marks every portal API key secret; the auth layer relies on
// it to tell key secrets apart from dashboard bearer tokens.
const SecretPrefix = "sk_"

// APIKey is a developer credential. Only the SHA-256 digest of the secret
// is stored; the plaintext exists exactly once, in the create response.
type APIKey struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string     `json:"user_id" gorm:"index"`
	Name       string     `json:"name"`
	Digest     string     `json:"-" gorm:"uniqueIndex"`
	Display    string     `json:"display"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (a APIKey) TableName() string {
	return "public.api_keys"
}

func (a APIKey) IsValid() bool {
	if !a.Active || a.RevokedAt != nil {
		return false
	}
	if a.ExpiresAt != nil && time.Now().After(*a.ExpiresAt) {
		return false
	}
	return true
}

// NewSecret generates a fresh key secret and its storable digest.
func NewSecret() (secret, digest string, err error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate key material: %w", err)
	}
	secret = SecretPrefix + base64.RawURLEncoding.EncodeToString(raw)
	return secret, DigestOf(secret), nil
}

// DigestOf returns the hex SHA-256 digest under which a secret is stored
// and looked up.
func DigestOf(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// DisplayOf is the non-sensitive form shown in key listings.
func DisplayOf(secret string) string {
	if len(secret) <= 10 {
		return secret
	}
	return secret[:10] + "..."
}
