package domain

// Имена репозиториев в реестре UnitOfWork.
const (
	UserRepoName         = "users"
	ProductRepoName      = "products"
	CouponRepoName       = "coupons"
	OrderRepoName        = "orders"
	PointHistoryRepoName = "point_histories"
)
