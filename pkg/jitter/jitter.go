// Package jitter предоставляет задержки с джиттером и повтор операций с экспоненциальным отступлением.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	f := globalRand.Float64()
	randMutex.Unlock()
	return d + time.Duration(f*jitterFactor*float64(d))
}

// DurationWithSeed — то же, что Duration, но с переданным генератором (для детерминированных тестов).
func DurationWithSeed(d time.Duration, jitterFactor float64, rng *rand.Rand) time.Duration {
	return d + time.Duration(rng.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff вычисляет base*2^attempt, ограниченное max, и добавляет джиттер.
// attempt нумеруется с нуля.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max || backoff <= 0 {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Retry вызывает fn до attempts раз, пока та не вернёт nil.
// Между попытками ждёт ExponentialBackoff(base, max, attempt). Возвращает последнюю ошибку
// либо ошибку контекста, если он отменён во время ожидания.
func Retry(ctx context.Context, attempts int, base, max time.Duration, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-time.After(ExponentialBackoff(base, max, attempt, DefaultJitter)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
