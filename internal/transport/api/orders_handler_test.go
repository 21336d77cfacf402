package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/service"
	"github.com/fsdevblog/groph-shop/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-shop/internal/transport/api/testutils"
)

type OrderHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockOrderService  *mocks.MockOrderServicer
	mockUnsafeService *mocks.MockOrderServicer
	mockQueryService  *mocks.MockQueryServicer
}

func TestOrderHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrderHandlerTestSuite))
}

func (s *OrderHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockOrderService = mocks.NewMockOrderServicer(mockCtrl)
	s.mockUnsafeService = mocks.NewMockOrderServicer(mockCtrl)
	s.mockQueryService = mocks.NewMockQueryServicer(mockCtrl)

	log := logrus.New()
	log.SetOutput(io.Discard)

	s.router = New(RouterArgs{
		Logger:             log,
		OrderService:       s.mockOrderService,
		UnsafeOrderService: s.mockUnsafeService,
		QueryService:       s.mockQueryService,
	})
}

func (s *OrderHandlerTestSuite) TestCreateOrder() {
	validPayload := []byte(`{"user_id":1,"items":[{"product_id":2,"quantity":1}],"points_to_use":300}`)

	wantArgs := service.CreateOrderArgs{
		UserID:      1,
		Items:       []service.OrderItemArgs{{ProductID: 2, Quantity: 1}},
		PointsToUse: 300,
	}

	// Моки
	// Валидный запрос через защищенный маршрут.
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), wantArgs).
		Return(&domain.Order{ID: 77, UserID: 1, Status: domain.OrderStatusConfirmed, FinalAmount: 200}, nil).
		Times(1)
	// Нехватка остатка.
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("creating order: %w", domain.ErrInsufficientStock)).
		Times(1)
	// Невзятый мьютекс.
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("creating order: %w", domain.ErrLockAcquisitionTimeout)).
		Times(1)
	// Валидный запрос через unsafe маршрут уходит в unsafe сервис.
	s.mockUnsafeService.EXPECT().
		Create(gomock.Any(), wantArgs).
		Return(&domain.Order{ID: 78, UserID: 1, Status: domain.OrderStatusConfirmed}, nil).
		Times(1)

	cases := []struct {
		name       string
		url        string
		payload    []byte
		wantStatus int
	}{
		{
			name:       "guarded ok",
			url:        RouteGroup + V2Group + OrdersRoute,
			payload:    validPayload,
			wantStatus: http.StatusCreated,
		}, {
			name:       "insufficient stock",
			url:        RouteGroup + V2Group + OrdersRoute,
			payload:    validPayload,
			wantStatus: http.StatusConflict,
		}, {
			name:       "lock timeout",
			url:        RouteGroup + V2Group + OrdersRoute,
			payload:    validPayload,
			wantStatus: http.StatusServiceUnavailable,
		}, {
			name:       "unsafe ok",
			url:        RouteGroup + V1Group + OrdersRoute,
			payload:    validPayload,
			wantStatus: http.StatusCreated,
		}, {
			name:       "empty items",
			url:        RouteGroup + V2Group + OrdersRoute,
			payload:    []byte(`{"user_id":1,"items":[]}`),
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "malformed json",
			url:        RouteGroup + V2Group + OrdersRoute,
			payload:    []byte(`{"user_id":`),
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    c.url,
				Body:   bytes.NewReader(c.payload),
			}, testutils.WithHeader("Content-Type", "application/json"))
			defer resp.Body.Close()

			s.Equal(c.wantStatus, resp.StatusCode)
		})
	}
}

func (s *OrderHandlerTestSuite) TestCreateOrderResponseBody() {
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Order{
			ID:     77,
			UserID: 1,
			Status: domain.OrderStatusConfirmed,
			Items: []domain.OrderItem{
				{ProductID: 2, Quantity: 1, PriceAtOrder: 500},
			},
			TotalAmount: 500,
			FinalAmount: 500,
		}, nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + V2Group + OrdersRoute,
		Body:   bytes.NewReader([]byte(`{"user_id":1,"items":[{"product_id":2,"quantity":1}]}`)),
	}, testutils.WithHeader("Content-Type", "application/json"))
	defer resp.Body.Close()

	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var body OrderResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(int64(77), body.ID)
	s.Equal(domain.OrderStatusConfirmed, body.Status)
	s.Require().Len(body.Items, 1)
	s.Equal(int64(500), body.Items[0].PriceAtOrder)
}

func (s *OrderHandlerTestSuite) TestCancelOrder() {
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(77)).Return(nil)
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(78)).
		Return(fmt.Errorf("cancelling order 78: %w", domain.ErrInvalidState))
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(404)).
		Return(fmt.Errorf("cancelling order 404: %w", domain.ErrNotFound))

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"ok", RouteGroup + V2Group + "/orders/77/cancel", http.StatusNoContent},
		{"already cancelled", RouteGroup + V2Group + "/orders/78/cancel", http.StatusConflict},
		{"not found", RouteGroup + V2Group + "/orders/404/cancel", http.StatusNotFound},
		{"bad id", RouteGroup + V2Group + "/orders/abc/cancel", http.StatusBadRequest},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    c.url,
			})
			defer resp.Body.Close()

			s.Equal(c.wantStatus, resp.StatusCode)
		})
	}
}

func (s *OrderHandlerTestSuite) TestProductStock() {
	s.mockQueryService.EXPECT().ProductStock(gomock.Any(), int64(5)).
		Return(&domain.Product{ID: 5, Name: "widget", Price: 100, StockQuantity: 7}, nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + "/products/5/stock",
	})
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body ProductResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(int64(7), body.StockQuantity)
}
