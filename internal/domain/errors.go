package domain

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrUnknown      = errors.New("unknown error")

	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrCouponExhausted    = errors.New("coupon exhausted")
	ErrInvalidState       = errors.New("invalid state")

	ErrLockAcquisitionTimeout = errors.New("lock acquisition timeout")
	ErrLockConflict           = errors.New("lock conflict")
)

// IsRetriable true для ошибок взятия локов: запрос можно повторить целиком,
// мутаций не было. Бизнес-ошибки повторять бессмысленно.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrLockAcquisitionTimeout) || errors.Is(err, ErrLockConflict)
}
