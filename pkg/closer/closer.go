package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// successIdx - индекс, который возвращается в случае успешного закрытия всех ресурсов
	successIdx = -1
)

// Closer обеспечивает потокобезопасное закрытие ресурсов приложения (HTTP-сервер, воркеры, пулы).
type Closer struct {
	items         []item
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

type item struct {
	name string
	fn   Func
}

// NewCloser создает новый экземпляр Closer.
// forcedTimeout — время, отводимое на принудительное закрытие оставшихся ресурсов, если контекст Close истёк.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
	}
}

// Add регистрирует ресурс. name попадает в текст ошибки при неудачном закрытии.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item{name: name, fn: f})
}

// Close закрывает ресурсы в порядке LIFO.
// Если контекст отменяется до завершения, оставшиеся ресурсы закрываются принудительно и параллельно.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		items := c.items
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, items)
		if stopIdx == successIdx {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		forcedErrs := c.forcedClose(items[:stopIdx+1])
		errs = append(errs, forcedErrs...)

		err = fmt.Errorf(
			"shutdown interrupted after %d/%d funcs:\n%s",
			len(items)-1-stopIdx,
			len(items),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

func (c *Closer) gracefulClose(ctx context.Context, items []item) (int, []string) {
	var errs []string
	for i := len(items) - 1; i >= 0; i-- {
		var (
			it   = items[i]
			done = make(chan error, 1)
		)

		go func() {
			done <- it.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", it.name, err))
			}
		case <-ctx.Done():
			// i-й ресурс ещё закрывается, включаем его в принудительное закрытие
			return i, errs
		}
	}

	return successIdx, errs
}

func (c *Closer) forcedClose(items []item) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, it := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := it.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", it.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
