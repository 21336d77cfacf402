package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx простейший драйвер для тестов: считает коммиты и откаты.
type fakeTx struct {
	commits   int
	rollbacks int
	closed    bool
}

func (t *fakeTx) Conn() Conn { return t }

func (t *fakeTx) Commit(context.Context) error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true
	t.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true
	t.rollbacks++
	return nil
}

type fakeBeginner struct {
	last     *fakeTx
	beginErr error
}

func (b *fakeBeginner) Begin(context.Context) (Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	b.last = &fakeTx{}
	return b.last, nil
}

type fakeRepo struct{ conn Conn }

func TestDoCommitsOnSuccess(t *testing.T) {
	beginner := &fakeBeginner{}
	u := NewUnitOfWork(beginner, nil)

	err := u.Do(context.Background(), func(context.Context, TX) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, beginner.last.commits)
	assert.Equal(t, 0, beginner.last.rollbacks)
}

func TestDoRollsBackOnError(t *testing.T) {
	beginner := &fakeBeginner{}
	u := NewUnitOfWork(beginner, nil)

	wantErr := errors.New("boom")
	err := u.Do(context.Background(), func(context.Context, TX) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, beginner.last.commits)
	assert.Equal(t, 1, beginner.last.rollbacks)
}

func TestDoBeginError(t *testing.T) {
	wantErr := errors.New("no connection")
	u := NewUnitOfWork(&fakeBeginner{beginErr: wantErr}, nil)

	err := u.Do(context.Background(), func(context.Context, TX) error {
		return nil
	})
	require.ErrorIs(t, err, wantErr)
}

func TestRegisterDuplicate(t *testing.T) {
	u := NewUnitOfWork(&fakeBeginner{}, nil)

	factory := func(conn Conn) Repository { return &fakeRepo{conn: conn} }
	require.NoError(t, u.Register("users", factory))
	require.ErrorIs(t, u.Register("users", factory), ErrRepositoryAlreadyRegistered)
}

func TestGetRepositoryAs(t *testing.T) {
	u := NewUnitOfWork(&fakeBeginner{}, nil)
	require.NoError(t, u.Register("users", func(conn Conn) Repository { return &fakeRepo{conn: conn} }))

	repo, err := GetRepositoryAs[*fakeRepo](u, "users")
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = GetRepositoryAs[*fakeRepo](u, "missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)

	_, err = GetRepositoryAs[*fakeTx](u, "users")
	require.ErrorIs(t, err, ErrInvalidRepositoryType)
}

func TestTransactionGetAs(t *testing.T) {
	factories := map[RepositoryName]RepositoryFactory{
		"users": func(conn Conn) Repository { return &fakeRepo{conn: conn} },
	}
	tx := NewTransaction(&fakeTx{}, factories)

	repo, err := GetAs[*fakeRepo](tx, "users")
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = GetAs[*fakeRepo](tx, "missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)
}

func TestDoRepositoriesShareTx(t *testing.T) {
	beginner := &fakeBeginner{}
	u := NewUnitOfWork(beginner, nil)
	require.NoError(t, u.Register("users", func(conn Conn) Repository { return &fakeRepo{conn: conn} }))

	err := u.Do(context.Background(), func(_ context.Context, tx TX) error {
		repo, getErr := GetAs[*fakeRepo](tx, "users")
		if getErr != nil {
			return getErr
		}
		// репозиторий получает соединение транзакции, а не пула
		assert.Same(t, beginner.last, repo.conn)
		return nil
	})
	require.NoError(t, err)
}
