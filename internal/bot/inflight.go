package bot

import (
	"sync"

	"github.com/eliseohh/confessbot/internal/logger"
	tele "gopkg.in/telebot.v3"
)

// inflight counts running handlers. Once drained it turns new updates away,
// so nothing touches the relay after shutdown.
type inflight struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newInflight() *inflight {
	return &inflight{}
}

func (f *inflight) enter() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.wg.Add(1)
	return true
}

// drain stops admitting handlers and waits for the running ones.
func (f *inflight) drain() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

func (f *inflight) track(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !f.enter() {
			logger.Debug("update_dropped_shutting_down")
			return nil
		}
		defer f.wg.Done()
		return next(c)
	}
}

func onPanic(err error, _ tele.Context) {
	logger.Error("handler_panic", "error", err)
}
