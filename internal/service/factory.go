package service

import (
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/lock"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

type AppServices struct {
	Order       *OrderService
	UnsafeOrder *UnsafeOrderService
	Stock       *StockService
	Points      *PointService
	Query       *QueryService
}

func Factory(unitOfWork uow.UOW, locker lock.Locker, timings LockTimings, log *logrus.Logger) *AppServices {
	stock := NewStockService(log)
	points := NewPointService(locker, timings, log)

	return &AppServices{
		Order:       NewOrderService(unitOfWork, locker, stock, points, timings, log),
		UnsafeOrder: NewUnsafeOrderService(unitOfWork, stock, points, log),
		Stock:       stock,
		Points:      points,
		Query:       NewQueryService(unitOfWork),
	}
}
