package judge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/engine"
	redisinfra "github.com/praxisgrid/veritas/internal/infra/redis"
)

// Cache stores judge verdicts in Redis so re-running a comparison does not
// spend model quota again.
type Cache struct {
	client *redisinfra.Client
	ttl    time.Duration
}

func NewCache(client *redisinfra.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get is fail open: any Redis problem reads as a cache miss.
func (c *Cache) Get(ctx context.Context, key string) (*engine.JudgeVerdict, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			log.Debug().Err(err).Msg("Judge cache read failed")
		}
		return nil, false
	}

	var verdict engine.JudgeVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Judge cache entry corrupt")
		return nil, false
	}
	return &verdict, true
}

// Set writes best effort; a failed write only costs a future model call.
func (c *Cache) Set(ctx context.Context, key string, verdict *engine.JudgeVerdict) {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Msg("Judge cache write failed")
	}
}

// verdictKey is symmetric in the pair, so both orderings of the same two
// submissions hit one cache entry.
func verdictKey(req engine.JudgeRequest) string {
	first, second := req.Code1, req.Code2
	if second < first {
		first, second = second, first
	}
	h := sha256.New()
	h.Write([]byte(req.Language))
	h.Write([]byte{0})
	h.Write([]byte(req.ProblemContext))
	h.Write([]byte{0})
	h.Write([]byte(first))
	h.Write([]byte{0})
	h.Write([]byte(second))
	return "judge:verdict:" + hex.EncodeToString(h.Sum(nil))
}
