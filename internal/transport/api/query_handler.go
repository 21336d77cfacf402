package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

type QueryHandler struct {
	querySvs QueryServicer
}

func NewQueryHandler(querySvs QueryServicer) *QueryHandler {
	return &QueryHandler{
		querySvs: querySvs,
	}
}

type ProductResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	StockQuantity int64  `json:"stock_quantity"`
}

type CouponResponse struct {
	ID                  int64             `json:"id"`
	Name                string            `json:"name"`
	Type                domain.CouponType `json:"type"`
	DiscountValue       int64             `json:"discount_value"`
	TotalAvailableCount int64             `json:"total_available_count"`
	UsedCount           int64             `json:"used_count"`
	Remaining           int64             `json:"remaining"`
}

type PointHistoryResponse struct {
	CreatedAt    time.Time        `json:"created_at"`
	Type         domain.PointType `json:"type"`
	Amount       int64            `json:"amount"`
	BalanceAfter int64            `json:"balance_after"`
	OrderID      *int64           `json:"order_id,omitempty"`
}

type UserPointsResponse struct {
	UserID       int64                  `json:"user_id"`
	Grade        domain.UserGradeType   `json:"grade"`
	PointBalance int64                  `json:"point_balance"`
	Histories    []PointHistoryResponse `json:"histories"`
}

func newProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}
}

func newCouponResponse(c domain.Coupon) CouponResponse {
	return CouponResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Type:                c.Type,
		DiscountValue:       c.DiscountValue,
		TotalAvailableCount: c.TotalAvailableCount,
		UsedCount:           c.UsedCount,
		Remaining:           c.Remaining(),
	}
}

// Products GET RouteGroup + ProductsRoute.
func (q *QueryHandler) Products(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := q.querySvs.Products(reqCtx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = newProductResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

// ProductStock GET RouteGroup + ProductsRoute/:id.
func (q *QueryHandler) ProductStock(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := q.querySvs.ProductStock(reqCtx, productID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductResponse(*product))
}

// UserPoints GET RouteGroup + UsersRoute/:id/points.
func (q *QueryHandler) UserPoints(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, histories, err := q.querySvs.UserPoints(reqCtx, userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := UserPointsResponse{
		UserID:       user.ID,
		Grade:        user.Grade,
		PointBalance: user.PointBalance,
		Histories:    make([]PointHistoryResponse, len(histories)),
	}
	for i, h := range histories {
		response.Histories[i] = PointHistoryResponse{
			CreatedAt:    h.CreatedAt,
			Type:         h.Type,
			Amount:       h.Amount,
			BalanceAfter: h.BalanceAfter,
			OrderID:      h.OrderID,
		}
	}
	c.JSON(http.StatusOK, response)
}

// Coupons GET RouteGroup + CouponsRoute.
func (q *QueryHandler) Coupons(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	coupons, err := q.querySvs.Coupons(reqCtx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]CouponResponse, len(coupons))
	for i, cp := range coupons {
		response[i] = newCouponResponse(cp)
	}
	c.JSON(http.StatusOK, response)
}

// Coupon GET RouteGroup + CouponsRoute/:id.
func (q *QueryHandler) Coupon(c *gin.Context) {
	couponID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	coupon, err := q.querySvs.Coupon(reqCtx, couponID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCouponResponse(*coupon))
}

// Order GET RouteGroup + OrdersRoute/:id.
func (q *QueryHandler) Order(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := q.querySvs.Order(reqCtx, orderID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Orders GET RouteGroup + OrdersRoute.
func (q *QueryHandler) Orders(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := q.querySvs.Orders(reqCtx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = newOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, response)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
