package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const defaultRetryInterval = 50 * time.Millisecond

// unlockScript удаляет ключ только если его значение совпадает с токеном
// держателя. Иначе лок уже истек и перезахвачен — трогать его нельзя.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker распределенный мьютекс на SET NX + TTL. Токен держателя
// учитывается на процесс: парность lock/unlock внутри процесса обеспечивает
// дисциплина With.
type RedisLocker struct {
	client        *redis.Client
	log           *logrus.Logger
	retryInterval time.Duration
	tokens        sync.Map // key -> токен текущего держателя в этом процессе
}

func NewRedisLocker(client *redis.Client, log *logrus.Logger) *RedisLocker {
	return &RedisLocker{
		client:        client,
		log:           log,
		retryInterval: defaultRetryInterval,
	}
}

func (l *RedisLocker) TryLock(
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
		ok, err := l.client.SetNX(ctx, key, token, leaseTime).Result()
		if err != nil {
			return false, fmt.Errorf("redis setnx %q: %w", key, err)
		}
		if ok {
			l.tokens.Store(key, token)
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

func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	token, held := l.tokens.LoadAndDelete(key)
	if !held {
		l.log.WithField("key", key).Warn("unlock attempt for lock not held by caller")
		return nil
	}

	res, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil {
		return fmt.Errorf("redis unlock %q: %w", key, err)
	}
	if deleted, _ := res.(int64); deleted == 0 {
		// lease истек, лок мог быть перезахвачен другим воркером
		l.log.WithField("key", key).Warn("unlock attempt for expired lock")
		return nil
	}
	l.log.WithField("key", key).Debug("lock released")
	return nil
}

func (l *RedisLocker) IsHeldByCaller(ctx context.Context, key string) bool {
	token, held := l.tokens.Load(key)
	if !held {
		return false
	}
	val, err := l.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return val == token
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
