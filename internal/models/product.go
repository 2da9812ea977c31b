package models

import (
	"strings"

	"github.com/coffeeshop/cartsync/internal/constants"
)

// Product 商品快照（由服务端下发，客户端只读）
type Product struct {
	ID                  uint   `json:"id"`                            // 商品ID
	Title               string `json:"title"`                         // 商品名称
	Description         string `json:"description,omitempty"`         // 描述
	Category            string `json:"category,omitempty"`            // 分类名称
	Image               string `json:"image,omitempty"`               // 图片路径
	Active              bool   `json:"active"`                        // 是否在售
	PriceSmall          *Money `json:"priceSmall,omitempty"`          // 小杯价格
	PriceMedium         *Money `json:"priceMedium,omitempty"`         // 中杯价格
	PriceLarge          *Money `json:"priceLarge,omitempty"`          // 大杯价格
	Discount            *int   `json:"discount,omitempty"`            // 折扣百分比
	DiscountPriceSmall  *Money `json:"discountPriceSmall,omitempty"`  // 小杯折后价
	DiscountPriceMedium *Money `json:"discountPriceMedium,omitempty"` // 中杯折后价
	DiscountPriceLarge  *Money `json:"discountPriceLarge,omitempty"`  // 大杯折后价
	Stock               int    `json:"stock,omitempty"`               // 库存
	Type                string `json:"type,omitempty"`                // hot / iced
}

// tierPrice 返回某一规格的单价，折后价优先
func (p *Product) tierPrice(size string) *Money {
	if p == nil {
		return nil
	}
	switch size {
	case constants.SizeSmall:
		return firstPrice(p.DiscountPriceSmall, p.PriceSmall)
	case constants.SizeLarge:
		return firstPrice(p.DiscountPriceLarge, p.PriceLarge)
	default:
		return firstPrice(p.DiscountPriceMedium, p.PriceMedium)
	}
}

// PriceBySize 按规格取单价；该规格未定价时依次回退 medium → small → large
func (p *Product) PriceBySize(size string) (Money, bool) {
	size = strings.ToLower(strings.TrimSpace(size))
	if size == "" {
		size = constants.DefaultSize
	}
	if price := p.tierPrice(size); price != nil {
		return *price, true
	}
	for _, fallback := range []string{constants.SizeMedium, constants.SizeSmall, constants.SizeLarge} {
		if price := p.tierPrice(fallback); price != nil {
			return *price, true
		}
	}
	return Zero(), false
}

func firstPrice(candidates ...*Money) *Money {
	for _, candidate := range candidates {
		if candidate != nil {
			return candidate
		}
	}
	return nil
}
