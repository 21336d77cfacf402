package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type CreateOrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	UserID      int64                    `json:"user_id" binding:"required,gt=0"`
	Items       []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponID    *int64                   `json:"coupon_id" binding:"omitempty,gt=0"`
	PointsToUse int64                    `json:"points_to_use" binding:"gte=0"`
}

type OrderItemResponse struct {
	ProductID    int64 `json:"product_id"`
	Quantity     int64 `json:"quantity"`
	PriceAtOrder int64 `json:"price_at_order"`
}

type OrderResponse struct {
	ID             int64                  `json:"id"`
	CreatedAt      time.Time              `json:"created_at"`
	UserID         int64                  `json:"user_id"`
	Status         domain.OrderStatusType `json:"status"`
	Items          []OrderItemResponse    `json:"items"`
	TotalAmount    int64                  `json:"total_amount"`
	DiscountAmount int64                  `json:"discount_amount"`
	PointUsed      int64                  `json:"point_used"`
	PointRewarded  int64                  `json:"point_rewarded"`
	FinalAmount    int64                  `json:"final_amount"`
	CouponID       *int64                 `json:"coupon_id,omitempty"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
		}
	}
	return OrderResponse{
		ID:             order.ID,
		CreatedAt:      order.CreatedAt,
		UserID:         order.UserID,
		Status:         order.Status,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		PointUsed:      order.PointUsed,
		PointRewarded:  order.PointRewarded,
		FinalAmount:    order.FinalAmount,
		CouponID:       order.CouponID,
	}
}

// Create POST <группа>/orders.
func (o *OrdersHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	items := make([]service.OrderItemArgs, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemArgs{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, service.CreateOrderArgs{
		UserID:      req.UserID,
		Items:       items,
		CouponID:    req.CouponID,
		PointsToUse: req.PointsToUse,
	})
	if createErr != nil {
		abortWithDomainError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Cancel POST <группа>/orders/:id/cancel.
func (o *OrdersHandler) Cancel(c *gin.Context) {
	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil || orderID <= 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if cancelErr := o.orderSvs.Cancel(reqCtx, orderID); cancelErr != nil {
		abortWithDomainError(c, cancelErr)
		return
	}

	c.AbortWithStatus(http.StatusNoContent)
}

// abortWithDomainError переводит доменную ошибку в http статус. Ошибки
// блокировок отдаются как 503: клиент может повторить запрос.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInsufficientPoints),
		errors.Is(err, domain.ErrCouponExhausted),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrDuplicateKey):
		_ = c.AbortWithError(http.StatusConflict, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrLockAcquisitionTimeout),
		errors.Is(err, domain.ErrLockConflict):
		_ = c.AbortWithError(http.StatusServiceUnavailable, err).SetType(gin.ErrorTypePrivate)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
