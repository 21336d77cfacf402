package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// StockService операции над складом. Операции над сущностью сами по себе не
// синхронизированы: защищенные методы берут эксклюзивный лок строки, Unsafe
// варианты читают без лока и существуют для воспроизведения гонки.
type StockService struct {
	log *logrus.Logger
}

func NewStockService(log *logrus.Logger) *StockService {
	return &StockService{log: log}
}

// Decrease списывает qty со склада под эксклюзивным локом товара. Лок живет
// до конца объемлющей транзакции. Возвращает товар с ценой на момент заказа.
func (s *StockService) Decrease(ctx context.Context, tx uow.TX, productID, qty int64) (*domain.Product, error) {
	repo, repoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(domain.ProductRepoName))
	if repoErr != nil {
		return nil, repoErr
	}

	product, findErr := repo.FindByIDForUpdate(ctx, productID)
	if findErr != nil {
		return nil, findErr
	}
	s.log.WithFields(logrus.Fields{"productID": productID, "stock": product.StockQuantity}).
		Debug("decreasing stock under row lock")

	if err := product.DecreaseStock(qty); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Increase возвращает qty на склад под эксклюзивным локом товара
// (компенсация при отмене).
func (s *StockService) Increase(ctx context.Context, tx uow.TX, productID, qty int64) error {
	repo, repoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(domain.ProductRepoName))
	if repoErr != nil {
		return repoErr
	}

	product, findErr := repo.FindByIDForUpdate(ctx, productID)
	if findErr != nil {
		return findErr
	}
	product.IncreaseStock(qty)
	return repo.Save(ctx, product)
}

// DecreaseUnsafe то же списание, но без лока: между чтением и записью другой
// воркер может прочитать тот же остаток. Существует для демонстрации гонки,
// не для обхода.
func (s *StockService) DecreaseUnsafe(ctx context.Context, tx uow.TX, productID, qty int64) (*domain.Product, error) {
	repo, repoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(domain.ProductRepoName))
	if repoErr != nil {
		return nil, repoErr
	}

	product, findErr := repo.FindByID(ctx, productID)
	if findErr != nil {
		return nil, findErr
	}
	if err := product.DecreaseStock(qty); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// IncreaseUnsafe возврат на склад без лока.
func (s *StockService) IncreaseUnsafe(ctx context.Context, tx uow.TX, productID, qty int64) error {
	repo, repoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(domain.ProductRepoName))
	if repoErr != nil {
		return repoErr
	}

	product, findErr := repo.FindByID(ctx, productID)
	if findErr != nil {
		return findErr
	}
	product.IncreaseStock(qty)
	return repo.Save(ctx, product)
}
