package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/lock/mocks"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "order:create:user:7", OrderCreateKey(7))
	assert.Equal(t, "order:cancel:42", OrderCancelKey(42))
	assert.Equal(t, "user:point:7", UserPointKey(7))
}

func TestWithRunsUnderLock(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockLocker := mocks.NewMockLocker(mockCtrl)

	gomock.InOrder(
		mockLocker.EXPECT().
			TryLock(gomock.Any(), "k1", time.Second, 2*time.Second).
			Return(true, nil),
		mockLocker.EXPECT().Unlock(gomock.Any(), "k1").Return(nil),
	)

	var called bool
	err := With(context.Background(), mockLocker, "k1", time.Second, 2*time.Second, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithReleasesOnError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockLocker := mocks.NewMockLocker(mockCtrl)

	wantErr := errors.New("boom")
	gomock.InOrder(
		mockLocker.EXPECT().
			TryLock(gomock.Any(), "k1", gomock.Any(), gomock.Any()).
			Return(true, nil),
		mockLocker.EXPECT().Unlock(gomock.Any(), "k1").Return(nil),
	)

	err := With(context.Background(), mockLocker, "k1", time.Second, time.Second, func() error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestWithLockTimeout(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockLocker := mocks.NewMockLocker(mockCtrl)

	mockLocker.EXPECT().
		TryLock(gomock.Any(), "k1", gomock.Any(), gomock.Any()).
		Return(false, nil)
	// Unlock не должен вызываться: лок не был взят

	var called bool
	err := With(context.Background(), mockLocker, "k1", time.Second, time.Second, func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, domain.ErrLockAcquisitionTimeout)
	assert.False(t, called)
}

func TestWithTryLockError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockLocker := mocks.NewMockLocker(mockCtrl)

	wantErr := errors.New("redis down")
	mockLocker.EXPECT().
		TryLock(gomock.Any(), "k1", gomock.Any(), gomock.Any()).
		Return(false, wantErr)

	err := With(context.Background(), mockLocker, "k1", time.Second, time.Second, func() error {
		return nil
	})
	require.ErrorIs(t, err, wantErr)
}
