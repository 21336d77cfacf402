package lock

//go:generate mockgen -source=locker.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

// Locker именованный мьютекс, действующий на все воркеры независимо от
// границ процессов.
//
// TryLock блокируется не дольше waitTime и возвращает false (не ошибку),
// если лок занят. leaseTime страховка от умершего держателя: по его
// истечении лок освобождается сам. Держатель, переживший свой lease,
// об этом узнать не может — lease рассчитан на краш, а не на медленную
// операцию.
type Locker interface {
	TryLock(ctx context.Context, key string, waitTime, leaseTime time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	IsHeldByCaller(ctx context.Context, key string) bool
}

// Ключи мьютексов воркфлоу заказов.
func OrderCreateKey(userID int64) string {
	return fmt.Sprintf("order:create:user:%d", userID)
}

func OrderCancelKey(orderID int64) string {
	return fmt.Sprintf("order:cancel:%d", orderID)
}

func UserPointKey(userID int64) string {
	return fmt.Sprintf("user:point:%d", userID)
}

// With выполняет fn под локом key. Лок снимается на любом выходе из fn,
// включая ошибку. Невзятый за waitTime лок — это ErrLockAcquisitionTimeout:
// вся операция прерывается, мутаций не было, вызывающий волен повторить.
func With(
	ctx context.Context,
	l Locker,
	key string,
	waitTime, leaseTime time.Duration,
	fn func() error,
) error {
	ok, lockErr := l.TryLock(ctx, key, waitTime, leaseTime)
	if lockErr != nil {
		return fmt.Errorf("acquiring lock %q: %w", key, lockErr)
	}
	if !ok {
		return fmt.Errorf("%w: key %q after %s", domain.ErrLockAcquisitionTimeout, key, waitTime)
	}
	defer func() {
		// снимаем лок даже если ctx уже отменен
		_ = l.Unlock(context.WithoutCancel(ctx), key)
	}()

	return fn()
}
