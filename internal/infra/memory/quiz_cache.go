package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

// QuizLoader fetches the public view of a quiz by share code from a backing
// store.
type QuizLoader interface {
	LoadQuizByCode(ctx context.Context, code string) (domain.Quiz, error)
}

// QuizCache caches share-code lookups with a TTL to absorb repeated fetches
// from respondents opening the same shared quiz.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

var _ app.QuizResolver = (*QuizCache)(nil)

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (c *QuizCache) QuizByShareCode(ctx context.Context, code string) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[code]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[code]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuizByCode(ctx, code)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[code] = cachedQuiz{quiz: quiz, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// InvalidateShareCode drops the cached entry after a quiz or question
// mutation.
func (c *QuizCache) InvalidateShareCode(_ context.Context, code string) error {
	c.mu.Lock()
	delete(c.cache, code)
	c.mu.Unlock()
	return nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StoreQuizLoader serves share-code lookups straight from an app.Store,
// sanitizing the quiz for respondents. Used when no dedicated read path is
// configured.
type StoreQuizLoader struct {
	store app.Store
}

func NewStoreQuizLoader(store app.Store) *StoreQuizLoader {
	return &StoreQuizLoader{store: store}
}

func (l *StoreQuizLoader) LoadQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	quiz, err := l.store.FindQuizByShareCode(ctx, code)
	if err != nil {
		return domain.Quiz{}, err
	}
	questions, err := l.store.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = questions
	return quiz.PublicView(), nil
}
