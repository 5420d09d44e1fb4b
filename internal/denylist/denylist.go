// Package denylist хранит отозванные JWT до истечения их срока действия.
//
// Токены хранятся в виде SHA-256 дайджеста. Доступны две реализации:
// Memory (в памяти процесса, очистка по расписанию cron) и Redis (TTL ключа).
package denylist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store хранилище отозванных токенов.
type Store interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
