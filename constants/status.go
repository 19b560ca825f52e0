package constants

// Roles
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Notification preference flags
const (
	DiscountNotification = "discount_notification"
	ProductNotification  = "product_notification"
	FeedbackNotification = "feedback_notification"
)

// Notification target
const (
	TargetIndividual = "individual"
)

// RPC queues (RabbitMQ)
const (
	QueueGetProductByID            = "get_product_by_id_queue"
	QueueUpdateStock               = "update_stock_queue"
	QueueGetProductsBySellerID     = "get_products_by_seller_id_queue"
	QueueGetVariantBySku           = "get_variant_by_sku_queue"
	QueueProductInfo               = "product_info_queue"
	QueueVariantInfo               = "variant_info_queue"
	QueueGetUserByID               = "get_user_by_id_queue"
	QueueGetAllowNotificationPrefs = "get_allow_notification_preference_queue"
)

// Cache keys
const (
	CacheKeyProduct       = "product:"
	CacheKeyCategoryPath  = "category:path:"
	CacheKeyCategoryAll   = "category:*"
	CacheKeyCategoryLevel = "category:level:"
)

// Page sizes
const (
	DefaultPageSize    = 10
	UsageListLimit     = 10
	ProductLogLimit    = 10
	DefaultTopSelling  = 10
	MaxPageSize        = 100
	MaxFlashSaleHours  = 10
	MinFlashSaleHours  = 1
	DefaultUsageLimit  = 1
	ProductCacheMinute = 10
)
