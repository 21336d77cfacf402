package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetriable(t *testing.T) {
	assert.True(t, IsRetriable(ErrLockAcquisitionTimeout))
	assert.True(t, IsRetriable(fmt.Errorf("wrapped: %w", ErrLockConflict)))

	assert.False(t, IsRetriable(ErrInsufficientStock))
	assert.False(t, IsRetriable(ErrCouponExhausted))
	assert.False(t, IsRetriable(nil))
}
