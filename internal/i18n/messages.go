package i18n

var messages = map[string]map[string]string{
	LocaleVI: {
		"success":                    "Thành công",
		"error.bad_request":          "Yêu cầu không hợp lệ",
		"error.unauthorized":         "Vui lòng đăng nhập trước khi tiếp tục",
		"error.forbidden":            "Bạn không có quyền thực hiện thao tác này",
		"error.network":              "Không thể kết nối máy chủ, vui lòng thử lại",
		"error.internal":             "Lỗi hệ thống",
		"error.cart_item_id_invalid": "Mã sản phẩm trong giỏ không hợp lệ",
		"error.size_invalid":         "Kích cỡ không hợp lệ",
		"error.quantity_invalid":     "Số lượng không hợp lệ",
		"error.direction_invalid":    "Hướng cập nhật số lượng không hợp lệ",
		"error.deli_option_invalid":  "Phương thức giao hàng không hợp lệ",
		"error.payment_invalid":      "Phương thức thanh toán không hợp lệ",
		"error.checkout_info":        "Vui lòng nhập số điện thoại và địa chỉ",
		"error.cart_empty":           "Giỏ hàng đang trống",
		"cart.cleared":               "Đã xóa toàn bộ giỏ hàng",
		"cart.order_placed":          "Đặt hàng thành công",
		"cart.order_pending":         "Đặt hàng thành công, giỏ hàng sẽ được cập nhật sau",
		"session.reset":              "Đã đăng xuất",
	},
	LocaleEN: {
		"success":                    "Success",
		"error.bad_request":          "Invalid request",
		"error.unauthorized":         "Please log in to continue",
		"error.forbidden":            "You are not allowed to perform this action",
		"error.network":              "Cannot reach the server, please try again",
		"error.internal":             "Internal error",
		"error.cart_item_id_invalid": "Invalid cart item id",
		"error.size_invalid":         "Invalid size",
		"error.quantity_invalid":     "Invalid quantity",
		"error.direction_invalid":    "Invalid quantity direction",
		"error.deli_option_invalid":  "Invalid delivery option",
		"error.payment_invalid":      "Invalid payment method",
		"error.checkout_info":        "Mobile number and address are required",
		"error.cart_empty":           "Your cart is empty",
		"cart.cleared":               "Cart cleared",
		"cart.order_placed":          "Order placed",
		"cart.order_pending":         "Order placed, the cart will refresh shortly",
		"session.reset":              "Logged out",
	},
}
