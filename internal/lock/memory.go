package lock

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker реализация Locker в памяти процесса с тем же контрактом, что
// у RedisLocker, включая истечение lease. Используется в тестах и при запуске
// без Redis: семантика для одного процесса идентична.
type MemoryLocker struct {
	mu            sync.Mutex
	locks         map[string]*memoryEntry
	held          map[string]string // ключ -> токен держателя в этом процессе
	log           *logrus.Logger
	retryInterval time.Duration
}

func NewMemoryLocker(log *logrus.Logger) *MemoryLocker {
	return &MemoryLocker{
		locks:         make(map[string]*memoryEntry),
		held:          make(map[string]string),
		log:           log,
		retryInterval: defaultRetryInterval,
	}
}

func (l *MemoryLocker) TryLock(
	ctx context.Context,
	key string,
	waitTime, leaseTime time.Duration,
) (bool, error) {
	token, tokenErr := newToken()
	if tokenErr != nil {
		return false, tokenErr
	}

	deadline := time.Now().Add(waitTime)
	for {
		if l.claim(key, token, leaseTime) {
			l.log.WithField("key", key).Debug("lock acquired")
			return true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			l.log.WithField("key", key).Warn("lock wait time exceeded")
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(min(l.retryInterval, remaining)):
		}
	}
}

func (l *MemoryLocker) claim(key, token string, leaseTime time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, occupied := l.locks[key]
	if occupied && time.Now().Before(entry.expiresAt) {
		return false
	}
	l.locks[key] = &memoryEntry{token: token, expiresAt: time.Now().Add(leaseTime)}
	l.held[key] = token
	return true
}

func (l *MemoryLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, held := l.held[key]
	if !held {
		l.log.WithField("key", key).Warn("unlock attempt for lock not held by caller")
		return nil
	}
	delete(l.held, key)

	entry, occupied := l.locks[key]
	if !occupied || entry.token != token {
		// lease истек, лок перезахвачен — не трогаем чужой
		l.log.WithField("key", key).Warn("unlock attempt for expired lock")
		return nil
	}
	delete(l.locks, key)
	l.log.WithField("key", key).Debug("lock released")
	return nil
}

func (l *MemoryLocker) IsHeldByCaller(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, held := l.held[key]
	if !held {
		return false
	}
	entry, occupied := l.locks[key]
	return occupied && entry.token == token && time.Now().Before(entry.expiresAt)
}
