package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 15 * time.Second
)

const (
	RouteGroup        = "/api"
	V1Group           = "/v1"
	V2Group           = "/v2"
	OrdersRoute       = "/orders"
	CancelRoute       = "/orders/:id/cancel"
	OrderRoute        = "/orders/:id"
	ProductsRoute     = "/products"
	ProductStockRoute = "/products/:id/stock"
	CouponsRoute      = "/coupons"
	CouponUsageRoute  = "/coupons/:id/usage"
	PointsRoute       = "/users/:id/points"
)

type RouterArgs struct {
	Logger *logrus.Logger
	// OrderService выполняет заказы под локами, UnsafeOrderService без них.
	// v2 ходит в первый, v1 во второй.
	OrderService       OrderServicer
	UnsafeOrderService OrderServicer
	QueryService       QueryServicer
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	guardedHandler := NewOrdersHandler(args.OrderService)
	unsafeHandler := NewOrdersHandler(args.UnsafeOrderService)
	queryHandler := NewQueryHandler(args.QueryService)

	api := r.Group(RouteGroup)

	v1 := api.Group(V1Group)
	v1.POST(OrdersRoute, unsafeHandler.Create)
	v1.POST(CancelRoute, unsafeHandler.Cancel)

	v2 := api.Group(V2Group)
	v2.POST(OrdersRoute, guardedHandler.Create)
	v2.POST(CancelRoute, guardedHandler.Cancel)

	api.GET(ProductsRoute, queryHandler.Products)
	api.GET(ProductStockRoute, queryHandler.ProductStock)
	api.GET(CouponsRoute, queryHandler.Coupons)
	api.GET(CouponUsageRoute, queryHandler.Coupon)
	api.GET(PointsRoute, queryHandler.UserPoints)
	api.GET(OrdersRoute, queryHandler.Orders)
	api.GET(OrderRoute, queryHandler.Order)
	return r
}
