package fraud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dupguard/internal/account/models"
)

// Guard serializes detection runs over the same sensitive-field fingerprint
// so two racing registrations cannot both pass the check before either
// write lands. The guard is best-effort: lock-service trouble must never
// turn into a check failure, so acquisition errors fail open.
type Guard interface {
	// Acquire returns a release func and whether the fingerprint lock was
	// taken. ok=false means another run holds it right now.
	Acquire(ctx context.Context, fingerprint string) (release func(), ok bool)
}

// NopGuard performs no locking; the behavior of the original workflow.
type NopGuard struct{}

func (NopGuard) Acquire(context.Context, string) (func(), bool) {
	return func() {}, true
}

// RedisGuard implements Guard with a short-lived SET-NX key per fingerprint.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisGuard builds a guard with the given lock TTL. The TTL bounds how
// long a crashed run can hold a fingerprint.
func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisGuard{client: client, ttl: ttl, logger: logger}
}

func (g *RedisGuard) Acquire(ctx context.Context, fingerprint string) (func(), bool) {
	key := "dupguard:check:" + fingerprint
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		// Fail open: the lock is an extra safety net, not a gate.
		g.logger.WarnContext(ctx, "fingerprint guard unavailable, proceeding unlocked", "error", err)
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}
	return func() {
		if err := g.client.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			g.logger.WarnContext(ctx, "fingerprint guard release failed", "error", err)
		}
	}, true
}

// Fingerprint derives a stable hash over the candidate's sensitive fields.
// Accounts with identical bank details, phone, or KTP collide on it, which
// is exactly what the guard needs.
func Fingerprint(candidate *models.Account) string {
	h := sha256.New()
	h.Write([]byte(strings.Join([]string{
		candidate.BankName,
		candidate.BankAccountNumber,
		candidate.WhatsappNumber,
		candidate.KtpNumber,
	}, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}
