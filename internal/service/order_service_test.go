package service

import (
	"context"
	"io"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/lock"
	lockmocks "github.com/fsdevblog/groph-shop/internal/lock/mocks"
	"github.com/fsdevblog/groph-shop/internal/service/mocks"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-shop/pkg/uow/mocks"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockLocker      *lockmocks.MockLocker
	mockUserRepo    *mocks.MockUserRepository
	mockProductRepo *mocks.MockProductRepository
	mockCouponRepo  *mocks.MockCouponRepository
	mockOrderRepo   *mocks.MockOrderRepository
	mockHistoryRepo *mocks.MockPointHistoryRepository
	orderService    *OrderService
	timings         LockTimings
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockLocker = lockmocks.NewMockLocker(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockCouponRepo = mocks.NewMockCouponRepository(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockHistoryRepo = mocks.NewMockPointHistoryRepository(s.mockCtrl)
	s.timings = DefaultLockTimings()

	// Мок получения репозиториев из транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(domain.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(domain.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(domain.CouponRepoName)).
		Return(s.mockCouponRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(domain.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(domain.PointHistoryRepoName)).
		Return(s.mockHistoryRepo, nil).AnyTimes()

	log := logrus.New()
	log.SetOutput(io.Discard)

	stock := NewStockService(log)
	points := NewPointService(s.mockLocker, s.timings, log)
	s.orderService = NewOrderService(s.mockUOW, s.mockLocker, stock, points, s.timings, log)
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectDoPassthrough транзакция мокается прозрачно: fn выполняется сразу
// на mockTX.
func (s *OrderServiceTestSuite) expectDoPassthrough() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func (s *OrderServiceTestSuite) expectLock(key string) {
	s.mockLocker.EXPECT().
		TryLock(gomock.Any(), key, gomock.Any(), gomock.Any()).
		Return(true, nil)
	s.mockLocker.EXPECT().Unlock(gomock.Any(), key).Return(nil)
}

func (s *OrderServiceTestSuite) TestCreateOrder() {
	var userID int64 = 1
	couponID := int64(3)
	balance := int64(10_000)

	s.expectLock(lock.OrderCreateKey(userID))
	s.expectDoPassthrough()

	// списание и начисление баллов, каждое под своим мьютексом
	s.mockLocker.EXPECT().
		TryLock(gomock.Any(), lock.UserPointKey(userID), gomock.Any(), gomock.Any()).
		Return(true, nil).Times(2)
	s.mockLocker.EXPECT().Unlock(gomock.Any(), lock.UserPointKey(userID)).Return(nil).Times(2)

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), userID).
		DoAndReturn(func(_ context.Context, _ int64) (*domain.User, error) {
			return &domain.User{ID: userID, Grade: domain.UserGradeSilver, PointBalance: balance}, nil
		}).Times(3)
	s.mockUserRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			balance = u.PointBalance
			return nil
		}).Times(2)

	// товары лочатся в порядке возрастания id независимо от порядка в запросе
	gomock.InOrder(
		s.mockProductRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(1)).
			Return(&domain.Product{ID: 1, Price: 1000, StockQuantity: 10}, nil),
		s.mockProductRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(2)).
			Return(&domain.Product{ID: 2, Price: 500, StockQuantity: 5}, nil),
	)
	s.mockProductRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Product) error {
			switch p.ID {
			case 1:
				s.Equal(int64(8), p.StockQuantity)
			case 2:
				s.Equal(int64(4), p.StockQuantity)
			}
			return nil
		}).Times(2)

	s.mockCouponRepo.EXPECT().FindByIDForUpdate(gomock.Any(), couponID).
		Return(&domain.Coupon{
			ID: couponID, Type: domain.CouponTypeFixedAmount, DiscountValue: 500, TotalAvailableCount: 10,
		}, nil)
	s.mockCouponRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.Coupon) error {
			s.Equal(int64(1), c.UsedCount)
			return nil
		})

	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
			saved := *o
			saved.ID = 77
			return &saved, nil
		})
	s.mockOrderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *domain.Order) error {
			s.Equal(domain.OrderStatusConfirmed, o.Status)
			return nil
		})

	// журнал: списание до сохранения заказа (без orderID), начисление после
	s.mockHistoryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h *domain.PointHistory) (*domain.PointHistory, error) {
			switch h.Type {
			case domain.PointTypeUse:
				s.Equal(int64(300), h.Amount)
				s.Equal(int64(9_700), h.BalanceAfter)
				s.Nil(h.OrderID)
			case domain.PointTypeEarn:
				s.Equal(int64(50), h.Amount)
				s.Equal(int64(9_750), h.BalanceAfter)
				s.Require().NotNil(h.OrderID)
				s.Equal(int64(77), *h.OrderID)
			default:
				s.Failf("unexpected history type", "%s", h.Type)
			}
			return h, nil
		}).Times(2)

	order, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		UserID: userID,
		Items: []OrderItemArgs{
			{ProductID: 2, Quantity: 1},
			{ProductID: 1, Quantity: 2},
		},
		CouponID:    &couponID,
		PointsToUse: 300,
	})
	s.Require().NoError(err)

	s.Equal(int64(77), order.ID)
	s.Equal(domain.OrderStatusConfirmed, order.Status)
	s.Equal(int64(2_500), order.TotalAmount)
	s.Equal(int64(500), order.DiscountAmount)
	s.Equal(int64(300), order.PointUsed)
	s.Equal(int64(50), order.PointRewarded)
	s.Equal(int64(1_700), order.FinalAmount)
}

func (s *OrderServiceTestSuite) TestCreateOrderLockTimeout() {
	s.mockLocker.EXPECT().
		TryLock(gomock.Any(), lock.OrderCreateKey(1), s.timings.OrderWait, s.timings.OrderLease).
		Return(false, nil)
	// транзакция не открывается
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		UserID: 1,
		Items:  []OrderItemArgs{{ProductID: 1, Quantity: 1}},
	})
	s.Require().ErrorIs(err, domain.ErrLockAcquisitionTimeout)
	s.True(domain.IsRetriable(err))
}

func (s *OrderServiceTestSuite) TestCreateOrderUserNotFound() {
	s.expectLock(lock.OrderCreateKey(404))
	s.expectDoPassthrough()

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrNotFound)
	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		UserID: 404,
		Items:  []OrderItemArgs{{ProductID: 1, Quantity: 1}},
	})
	s.Require().ErrorIs(err, domain.ErrNotFound)
}

func (s *OrderServiceTestSuite) TestCreateOrderInsufficientStock() {
	var userID int64 = 1

	s.expectLock(lock.OrderCreateKey(userID))
	s.expectDoPassthrough()

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Grade: domain.UserGradeBronze}, nil)
	s.mockProductRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(1)).
		Return(&domain.Product{ID: 1, Price: 1000, StockQuantity: 1}, nil)
	// недостаточный остаток не сохраняется и заказ не создается
	s.mockProductRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)
	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		UserID: userID,
		Items:  []OrderItemArgs{{ProductID: 1, Quantity: 2}},
	})
	s.Require().ErrorIs(err, domain.ErrInsufficientStock)
	s.False(domain.IsRetriable(err))
}

func (s *OrderServiceTestSuite) TestCancelOrder() {
	var orderID int64 = 77
	var userID int64 = 1
	couponID := int64(3)
	balance := int64(500)

	s.expectLock(lock.OrderCancelKey(orderID))
	s.expectDoPassthrough()
	// возврат потраченных баллов идет под мьютексом, возврат начисленных
	// под локом строки
	s.expectLock(lock.UserPointKey(userID))

	s.mockOrderRepo.EXPECT().FindByIDWithItems(gomock.Any(), orderID).
		Return(&domain.Order{
			ID:            orderID,
			UserID:        userID,
			Status:        domain.OrderStatusConfirmed,
			CouponID:      &couponID,
			PointUsed:     300,
			PointRewarded: 50,
			Items: []domain.OrderItem{
				{ProductID: 2, Quantity: 1, PriceAtOrder: 500},
				{ProductID: 1, Quantity: 2, PriceAtOrder: 1000},
			},
		}, nil)
	s.mockOrderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *domain.Order) error {
			s.Equal(domain.OrderStatusCancelled, o.Status)
			return nil
		})

	gomock.InOrder(
		s.mockProductRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(1)).
			Return(&domain.Product{ID: 1, StockQuantity: 8}, nil),
		s.mockProductRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(2)).
			Return(&domain.Product{ID: 2, StockQuantity: 4}, nil),
	)
	s.mockProductRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Product) error {
			switch p.ID {
			case 1:
				s.Equal(int64(10), p.StockQuantity)
			case 2:
				s.Equal(int64(5), p.StockQuantity)
			}
			return nil
		}).Times(2)

	// refund идет через мьютекс и обычное чтение, возврат начисленного
	// через FOR UPDATE
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), userID).
		DoAndReturn(func(_ context.Context, _ int64) (*domain.User, error) {
			return &domain.User{ID: userID, PointBalance: balance}, nil
		})
	s.mockUserRepo.EXPECT().FindByIDForUpdate(gomock.Any(), userID).
		DoAndReturn(func(_ context.Context, _ int64) (*domain.User, error) {
			return &domain.User{ID: userID, PointBalance: balance}, nil
		})
	s.mockUserRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			balance = u.PointBalance
			return nil
		}).Times(2)

	s.mockHistoryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h *domain.PointHistory) (*domain.PointHistory, error) {
			s.Require().NotNil(h.OrderID)
			s.Equal(orderID, *h.OrderID)
			switch h.Type {
			case domain.PointTypeRefund:
				s.Equal(int64(300), h.Amount)
				s.Equal(int64(800), h.BalanceAfter)
			case domain.PointTypeUse:
				s.Equal(int64(50), h.Amount)
				s.Equal(int64(750), h.BalanceAfter)
			default:
				s.Failf("unexpected history type", "%s", h.Type)
			}
			return h, nil
		}).Times(2)

	s.mockCouponRepo.EXPECT().FindByIDForUpdate(gomock.Any(), couponID).
		Return(&domain.Coupon{ID: couponID, TotalAvailableCount: 10, UsedCount: 1}, nil)
	s.mockCouponRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.Coupon) error {
			s.Equal(int64(0), c.UsedCount)
			return nil
		})

	err := s.orderService.Cancel(context.Background(), orderID)
	s.Require().NoError(err)
}

func (s *OrderServiceTestSuite) TestCancelOrderAlreadyCancelled() {
	var orderID int64 = 77

	s.expectLock(lock.OrderCancelKey(orderID))
	s.expectDoPassthrough()

	s.mockOrderRepo.EXPECT().FindByIDWithItems(gomock.Any(), orderID).
		Return(&domain.Order{ID: orderID, Status: domain.OrderStatusCancelled}, nil)
	// повторная отмена не трогает ни заказ, ни склад
	s.mockOrderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)
	s.mockProductRepo.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any()).Times(0)

	err := s.orderService.Cancel(context.Background(), orderID)
	s.Require().ErrorIs(err, domain.ErrInvalidState)
}
