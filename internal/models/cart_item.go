package models

// CartItem 购物车行项目（id 为行 ID，不是商品 ID）
type CartItem struct {
	ID         uint     `json:"id"`         // 行ID（服务端分配）
	Product    *Product `json:"product"`    // 商品快照
	Quantity   int      `json:"quantity"`   // 数量（>= 1）
	Size       string   `json:"size"`       // small / medium / large
	TotalPrice Money    `json:"totalPrice"` // 行总价（服务端计算）
}

// DisplayUnitPrice 展示用单价（总价 / 数量），不作为权威金额
func (i CartItem) DisplayUnitPrice() Money {
	return i.TotalPrice.DivInt(i.Quantity)
}

// ProductID 返回商品ID，商品为空时返回 0
func (i CartItem) ProductID() uint {
	if i.Product == nil {
		return 0
	}
	return i.Product.ID
}

// Clone 深拷贝行项目
func (i CartItem) Clone() CartItem {
	out := i
	if i.Product != nil {
		product := *i.Product
		out.Product = &product
	}
	return out
}
