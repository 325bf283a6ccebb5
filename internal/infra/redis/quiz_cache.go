package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

// QuizLoader fetches the public view of a quiz by share code from a backing
// store.
type QuizLoader interface {
	LoadQuizByCode(ctx context.Context, code string) (domain.Quiz, error)
}

// QuizCache caches the public share-code view in Redis and falls back to a
// loader on cache miss. The value is the sanitized quiz as JSON:
// SET quiz:share:{code} {json} EX ttl. Loaders hand over quizzes with the
// correct answers already stripped, so cached bytes never contain answers.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

var _ app.QuizResolver = (*QuizCache)(nil)

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) QuizByShareCode(ctx context.Context, code string) (domain.Quiz, error) {
	key := c.key(code)

	if quiz, ok := c.fromCache(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if quiz, ok := c.fromCache(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.loader.LoadQuizByCode(ctx, code)
		if err != nil {
			return domain.Quiz{}, err
		}

		raw, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		// Best effort: a failed SET just means the next fetch reloads.
		_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// InvalidateShareCode drops the cached view after a quiz or question
// mutation.
func (c *QuizCache) InvalidateShareCode(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}

func (c *QuizCache) fromCache(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(code string) string {
	return "quiz:share:" + code
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
