package models

import (
	"time"

	"github.com/coffeeshop/cartsync/internal/constants"
)

// CartSnapshot 客户端持有的整车视图
type CartSnapshot struct {
	Items         []CartItem `json:"items"`          // 行项目（按服务端返回顺序）
	ItemCount     int        `json:"item_count"`     // 行数（非数量之和）
	SubTotal      Money      `json:"sub_total"`      // 服务端返回的商品合计
	DeliOption    string     `json:"deli_option"`    // 配送方式
	DeliFee       Money      `json:"deli_fee"`       // 配送费（本地计算）
	PaymentMethod string     `json:"payment_method"` // 支付方式
	TotalPayment  Money      `json:"total_payment"`  // SubTotal + DeliFee
	SyncedAt      time.Time  `json:"synced_at"`      // 最近一次成功同步时间
}

// NewEmptySnapshot 创建空购物车视图
func NewEmptySnapshot(deliOption, paymentMethod string, deliveryFee Money) CartSnapshot {
	s := CartSnapshot{
		Items:         []CartItem{},
		SubTotal:      Zero(),
		DeliOption:    deliOption,
		PaymentMethod: paymentMethod,
	}
	s.Recompute(deliveryFee)
	return s
}

// Recompute 根据当前 SubTotal 与配送方式重算派生字段
func (s *CartSnapshot) Recompute(deliveryFee Money) {
	s.ItemCount = len(s.Items)
	if s.DeliOption == constants.DeliOptionDeliver {
		s.DeliFee = deliveryFee
	} else {
		s.DeliFee = Zero()
	}
	s.TotalPayment = s.SubTotal.Add(s.DeliFee)
}

// Clone 深拷贝，读者拿到的副本与引擎内部状态互不影响
func (s CartSnapshot) Clone() CartSnapshot {
	out := s
	out.Items = make([]CartItem, 0, len(s.Items))
	for _, item := range s.Items {
		out.Items = append(out.Items, item.Clone())
	}
	return out
}
