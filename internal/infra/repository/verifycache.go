package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatepass/gatepass/internal/domain"
)

const verifyCacheTTL = 5 * time.Minute

// VerifyCache keeps resolved verification codes in redis so badge scans
// at the gates do not hammer postgres. Entries are short-lived; a status
// change becomes visible once the entry expires.
type VerifyCache struct {
	rdb *redis.Client
}

func NewVerifyCache(rdb *redis.Client) *VerifyCache {
	return &VerifyCache{rdb: rdb}
}

func (c *VerifyCache) key(code string) string {
	return "verify:" + code
}

func (c *VerifyCache) Get(ctx context.Context, code string) (domain.AccreditationRecord, bool) {
	raw, err := c.rdb.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "verify cache read failed", slog.String("error", err.Error()))
		}
		return domain.AccreditationRecord{}, false
	}

	var rec domain.AccreditationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		slog.WarnContext(ctx, "verify cache entry corrupt", slog.String("error", err.Error()))
		return domain.AccreditationRecord{}, false
	}
	return rec, true
}

func (c *VerifyCache) Set(ctx context.Context, code string, rec domain.AccreditationRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(code), raw, verifyCacheTTL).Err(); err != nil {
		slog.WarnContext(ctx, "verify cache write failed", slog.String("error", err.Error()))
	}
}
