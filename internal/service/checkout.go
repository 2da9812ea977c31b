package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/coffeeshop/cartsync/internal/cartapi"
	"github.com/coffeeshop/cartsync/internal/models"
)

// 收货信息缺省值
const (
	defaultOrderFirstName = "Khách"
	defaultOrderCity      = "Quảng Bình"
	defaultOrderState     = "Việt Nam"
	defaultOrderPincode   = "51000"
)

// CheckoutInput 下单输入
type CheckoutInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	MobileNo  string `json:"mobile_no"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

// CheckoutResult 下单结果；ClearPending 表示订单已提交但购物车尚未清空
type CheckoutResult struct {
	Message      string              `json:"message"`
	Snapshot     models.CartSnapshot `json:"snapshot"`
	ClearPending bool                `json:"clear_pending"`
}

// Checkout 提交订单后清空购物车；下单失败时购物车保持不变。
// 订单一旦保存成功即视为成功，后续清空或重新拉取失败只记录状态，不返回错误。
func (e *CartSyncEngine) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	input = trimCheckoutInput(input)
	if input.MobileNo == "" || input.Address == "" {
		return nil, fmt.Errorf("%w: mobile number and address are required", ErrInvalidArgument)
	}

	if err := e.acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer e.release()

	cred, err := e.resolve(ctx)
	if err != nil {
		e.log.Debugw("cart_mutation_unauthenticated", "operation", OpCheckout, "reason", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	current := e.Snapshot()
	if len(current.Items) == 0 {
		return nil, ErrCartEmpty
	}

	gen := e.begin(OpCheckout)
	order := buildOrderRequest(input, cred, current.PaymentMethod)
	result, err := e.api.SaveOrder(ctx, cred.Token, order)
	if err != nil {
		return nil, e.fail(OpCheckout, gen, err)
	}
	e.log.Infow("cart_checkout_succeeded",
		"user_id", cred.User.ID,
		"item_count", current.ItemCount,
		"total_payment", current.TotalPayment.String(),
		"payment_type", order.PaymentType,
	)

	out := &CheckoutResult{Message: result.Message, Snapshot: current}
	if err := e.api.ClearCart(ctx, cred.Token); err != nil {
		e.checkoutClearFailed(gen, out, err)
		return out, nil
	}
	snap, err := e.resync(ctx, cred, gen)
	if err != nil {
		e.checkoutClearFailed(gen, out, err)
		return out, nil
	}
	e.succeed(OpCheckout, gen)
	out.Snapshot = snap
	return out, nil
}

func (e *CartSyncEngine) checkoutClearFailed(gen uint64, out *CheckoutResult, err error) {
	mapped := mapAPIError(err)
	e.log.Warnw("cart_checkout_clear_failed", "error", err)
	e.recordFailure(OpCheckout, gen, mapped)
	out.ClearPending = true
}

func trimCheckoutInput(in CheckoutInput) CheckoutInput {
	return CheckoutInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		MobileNo:  strings.TrimSpace(in.MobileNo),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Pincode:   strings.TrimSpace(in.Pincode),
	}
}

// buildOrderRequest 组装下单请求，姓名与邮箱缺省时取自登录用户
func buildOrderRequest(in CheckoutInput, cred models.Credential, paymentMethod string) cartapi.OrderRequest {
	firstName, lastName := in.FirstName, in.LastName
	if firstName == "" && lastName == "" {
		parts := strings.Fields(cred.User.Name)
		if len(parts) > 0 {
			firstName = parts[0]
			lastName = strings.Join(parts[1:], " ")
		}
	}
	email := in.Email
	if email == "" {
		email = cred.User.Email
	}
	return cartapi.OrderRequest{
		FirstName:   orDefault(firstName, defaultOrderFirstName),
		LastName:    lastName,
		Email:       email,
		MobileNo:    in.MobileNo,
		Address:     in.Address,
		City:        orDefault(in.City, defaultOrderCity),
		State:       orDefault(in.State, defaultOrderState),
		Pincode:     orDefault(in.Pincode, defaultOrderPincode),
		PaymentType: paymentMethod,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
