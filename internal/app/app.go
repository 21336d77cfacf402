package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/config"
	"github.com/fsdevblog/groph-shop/internal/lock"
	"github.com/fsdevblog/groph-shop/internal/repository/memrepo"
	"github.com/fsdevblog/groph-shop/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-shop/internal/service"
	"github.com/fsdevblog/groph-shop/internal/transport/api"
	"github.com/fsdevblog/groph-shop/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)

	unitOfWork, closeStorage, uowErr := a.initUOW(notifyCtx)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}
	defer closeStorage()

	locker, lockerErr := a.initLocker(notifyCtx)
	if lockerErr != nil {
		return fmt.Errorf("app run: %s", lockerErr.Error())
	}

	services := service.Factory(unitOfWork, locker, service.DefaultLockTimings(), a.Logger)

	if seedErr := Seed(notifyCtx, unitOfWork, a.Logger); seedErr != nil {
		return fmt.Errorf("app run: %s", seedErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:             a.Logger,
		OrderService:       services.Order,
		UnsafeOrderService: services.UnsafeOrder,
		QueryService:       services.Query,
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// initUOW собирает unit of work поверх postgres, а при пустом DSN поверх
// in-memory стора. In-memory режим нужен для локальных запусков и демонстрации
// гонок без внешних зависимостей.
func (a *App) initUOW(ctx context.Context) (*uow.UnitOfWork, func(), error) {
	if a.Config.DatabaseDSN == "" {
		a.Logger.Warn("database DSN is empty, falling back to in-memory store")

		store := memrepo.NewStore()
		unitOfWork := uow.NewUnitOfWork(store, store)
		if regErr := memrepo.Register(unitOfWork); regErr != nil {
			return nil, nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
		return unitOfWork, func() {}, nil
	}

	pool, connErr := pgrepo.Connect(ctx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Config.PgLockTimeout, a.Logger)
	if connErr != nil {
		return nil, nil, fmt.Errorf("init UOW: %s", connErr.Error())
	}

	unitOfWork := uow.NewUnitOfWork(pgrepo.NewBeginner(pool), pool)
	if regErr := pgrepo.Register(unitOfWork); regErr != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}
	return unitOfWork, pool.Close, nil
}

// initLocker возвращает redis-локер, а при пустом адресе локер в памяти
// процесса. Кросс-процессные гарантии дает только redis.
func (a *App) initLocker(ctx context.Context) (lock.Locker, error) {
	if a.Config.RedisAddr == "" {
		a.Logger.Warn("redis address is empty, falling back to in-process locker")
		return lock.NewMemoryLocker(a.Logger), nil
	}

	client := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		return nil, fmt.Errorf("init locker: %s", pingErr.Error())
	}
	return lock.NewRedisLocker(client, a.Logger), nil
}
