package constants

// 饮品规格常量
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// DefaultSize 未指定规格时的默认值
const DefaultSize = SizeMedium

// 配送方式常量
const (
	DeliOptionDeliver = "delivery"
	DeliOptionPickUp  = "pick-up"
)

// 支付方式常量
const (
	PaymentMethodCash    = "cash"
	PaymentMethodMomo    = "momo"
	PaymentMethodZaloPay = "zalo-pay"
	PaymentMethodBank    = "bank-transfer"
)

// 数量调整方向（与后端 sy 参数一致）
const (
	QuantityIncrement = "in"
	QuantityDecrement = "de"
)

// MaxAddQuantity 单次加入购物车的最大件数（每件一次往返）
const MaxAddQuantity = 20

// DefaultDeliveryFee 默认配送费（VND）
const DefaultDeliveryFee = 15000

// CredentialStorageKey 登录凭证在本地存储中的唯一键
const CredentialStorageKey = "coffee-shop-auth-user"

// 凭证存储后端
const (
	CredentialStoreMemory   = "memory"
	CredentialStoreFile     = "file"
	CredentialStoreDatabase = "database"
	CredentialStoreRedis    = "redis"
)

// 购物车接口路径
const (
	PathCart       = "/api/user/cart"
	PathAddCart    = "/api/user/add-cart"
	PathCartUpdate = "/api/user/cart/update"
	PathCartDelete = "/api/user/cart/delete"
	PathCartClear  = "/api/user/cart/clear"
	PathSaveOrder  = "/api/user/save-order"
)

// 请求头
const (
	RequestIDHeader     = "X-Request-ID"
	AuthorizationPrefix = "Bearer "
)

// IsValidSize 判断规格是否合法
func IsValidSize(size string) bool {
	switch size {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// IsValidDeliOption 判断配送方式是否合法
func IsValidDeliOption(value string) bool {
	return value == DeliOptionDeliver || value == DeliOptionPickUp
}

// IsValidPaymentMethod 判断支付方式是否合法
func IsValidPaymentMethod(value string) bool {
	switch value {
	case PaymentMethodCash, PaymentMethodMomo, PaymentMethodZaloPay, PaymentMethodBank:
		return true
	}
	return false
}
