package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coffeeshop/cartsync/internal/cartapi"
	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/credential"
	"github.com/coffeeshop/cartsync/internal/models"

	"go.uber.org/zap"
)

// 操作阶段
const (
	PhaseIdle     = "idle"
	PhaseInflight = "inflight"
	PhaseResynced = "resynced"
	PhaseFailed   = "failed"
)

// 操作名称
const (
	OpFetchCart      = "fetch_cart"
	OpAddToCart      = "add_to_cart"
	OpUpdateQuantity = "update_quantity"
	OpRemoveFromCart = "remove_from_cart"
	OpClearCart      = "clear_cart"
	OpCheckout       = "checkout"
)

// CartAPI 购物车后端接口
type CartAPI interface {
	GetCart(ctx context.Context, token string) (*cartapi.CartPayload, error)
	AddCart(ctx context.Context, token string, productID, userID uint, size string) error
	UpdateQuantity(ctx context.Context, token string, direction string, cartItemID uint) error
	DeleteItem(ctx context.Context, token string, cartItemID uint) error
	ClearCart(ctx context.Context, token string) error
	SaveOrder(ctx context.Context, token string, order cartapi.OrderRequest) (*cartapi.OrderResult, error)
}

// CartSyncOptions 引擎配置
type CartSyncOptions struct {
	DeliveryFee          models.Money
	DefaultDeliOption    string
	DefaultPaymentMethod string
	Now                  func() time.Time
}

// SyncStatus 最近一次网络操作的状态
type SyncStatus struct {
	Operation string    `json:"operation"`
	Phase     string    `json:"phase"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	Err       error     `json:"-"`
}

// CartSyncEngine 购物车同步引擎：所有变更先写服务端，再整体重新拉取
type CartSyncEngine struct {
	api  CartAPI
	auth credential.AuthProvider
	log  *zap.SugaredLogger
	opts CartSyncOptions

	// gate 串行化变更（服务端调用 + 重新拉取）
	gate chan struct{}

	mu         sync.RWMutex
	snapshot   models.CartSnapshot
	status     SyncStatus
	generation uint64
}

// NewCartSyncEngine 创建购物车同步引擎
func NewCartSyncEngine(api CartAPI, auth credential.AuthProvider, opts CartSyncOptions, log *zap.SugaredLogger) *CartSyncEngine {
	if !constants.IsValidDeliOption(opts.DefaultDeliOption) {
		opts.DefaultDeliOption = constants.DeliOptionDeliver
	}
	if !constants.IsValidPaymentMethod(opts.DefaultPaymentMethod) {
		opts.DefaultPaymentMethod = constants.PaymentMethodCash
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &CartSyncEngine{
		api:  api,
		auth: auth,
		log:  log,
		opts: opts,
		gate: make(chan struct{}, 1),
	}
	e.snapshot = models.NewEmptySnapshot(opts.DefaultDeliOption, opts.DefaultPaymentMethod, opts.DeliveryFee)
	e.status = SyncStatus{Phase: PhaseIdle}
	return e
}

// Snapshot 返回当前购物车视图的副本
func (e *CartSyncEngine) Snapshot() models.CartSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.Clone()
}

// Status 返回最近一次网络操作状态
func (e *CartSyncEngine) Status() SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Reset 登出：清空视图并恢复默认配送/支付方式，进行中的操作结果将被丢弃
func (e *CartSyncEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.snapshot = models.NewEmptySnapshot(e.opts.DefaultDeliOption, e.opts.DefaultPaymentMethod, e.opts.DeliveryFee)
	e.status = SyncStatus{Phase: PhaseIdle, UpdatedAt: e.opts.Now()}
	e.log.Infow("cart_reset")
}

// FetchCart 拉取服务端购物车并整体替换本地视图；无凭证时静默返回当前视图
func (e *CartSyncEngine) FetchCart(ctx context.Context) (models.CartSnapshot, error) {
	cred, err := e.resolve(ctx)
	if err != nil {
		e.log.Debugw("cart_fetch_skipped", "reason", err)
		return e.Snapshot(), nil
	}
	gen := e.begin(OpFetchCart)
	snap, err := e.resync(ctx, cred, gen)
	if err != nil {
		return e.Snapshot(), e.fail(OpFetchCart, gen, err)
	}
	e.succeed(OpFetchCart, gen)
	return snap, nil
}

// AddToCart 加入一件商品，size 为空时默认 medium
func (e *CartSyncEngine) AddToCart(ctx context.Context, productID uint, size string) (models.CartSnapshot, error) {
	size, err := normalizeSize(size)
	if err != nil {
		return e.Snapshot(), err
	}
	if productID == 0 {
		return e.Snapshot(), fmt.Errorf("%w: product id must be positive", ErrInvalidArgument)
	}
	return e.mutate(ctx, OpAddToCart, func(ctx context.Context, cred models.Credential) error {
		return e.api.AddCart(ctx, cred.Token, productID, cred.User.ID, size)
	})
}

// AddToCartN 逐件加入 n 件商品，每次都等待服务端响应并重新拉取
func (e *CartSyncEngine) AddToCartN(ctx context.Context, productID uint, size string, n int) (models.CartSnapshot, error) {
	if n < 1 || n > constants.MaxAddQuantity {
		return e.Snapshot(), fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidArgument, constants.MaxAddQuantity)
	}
	snap := e.Snapshot()
	for i := 0; i < n; i++ {
		var err error
		snap, err = e.AddToCart(ctx, productID, size)
		if err != nil {
			e.log.Warnw("cart_add_batch_interrupted", "product_id", productID, "added", i, "requested", n, "error", err)
			return snap, err
		}
	}
	return snap, nil
}

// UpdateQuantity 调整行数量；当前视图中数量 <= 1 的行递减时改为删除
func (e *CartSyncEngine) UpdateQuantity(ctx context.Context, direction string, cartItemID uint) (models.CartSnapshot, error) {
	if direction != constants.QuantityIncrement && direction != constants.QuantityDecrement {
		return e.Snapshot(), fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, direction)
	}
	if cartItemID == 0 {
		return e.Snapshot(), fmt.Errorf("%w: cart item id must be positive", ErrInvalidArgument)
	}
	return e.mutate(ctx, OpUpdateQuantity, func(ctx context.Context, cred models.Credential) error {
		if direction == constants.QuantityDecrement {
			if quantity, ok := e.lineQuantity(cartItemID); ok && quantity <= 1 {
				e.log.Debugw("cart_decrement_routed_to_remove", "cart_item_id", cartItemID)
				return e.api.DeleteItem(ctx, cred.Token, cartItemID)
			}
		}
		return e.api.UpdateQuantity(ctx, cred.Token, direction, cartItemID)
	})
}

// RemoveFromCart 删除行
func (e *CartSyncEngine) RemoveFromCart(ctx context.Context, cartItemID uint) (models.CartSnapshot, error) {
	if cartItemID == 0 {
		return e.Snapshot(), fmt.Errorf("%w: cart item id must be positive", ErrInvalidArgument)
	}
	return e.mutate(ctx, OpRemoveFromCart, func(ctx context.Context, cred models.Credential) error {
		return e.api.DeleteItem(ctx, cred.Token, cartItemID)
	})
}

// ClearCart 清空购物车，空购物车上重复调用同样成功
func (e *CartSyncEngine) ClearCart(ctx context.Context) (models.CartSnapshot, error) {
	return e.mutate(ctx, OpClearCart, func(ctx context.Context, cred models.Credential) error {
		return e.api.ClearCart(ctx, cred.Token)
	})
}

// UpdateDeliOption 切换配送方式并立即重算配送费与应付总额
func (e *CartSyncEngine) UpdateDeliOption(value string) (models.CartSnapshot, error) {
	if !constants.IsValidDeliOption(value) {
		return e.Snapshot(), fmt.Errorf("%w: unknown deli option %q", ErrInvalidArgument, value)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot.DeliOption = value
	e.snapshot.Recompute(e.opts.DeliveryFee)
	return e.snapshot.Clone(), nil
}

// UpdatePaymentMethod 切换支付方式
func (e *CartSyncEngine) UpdatePaymentMethod(value string) (models.CartSnapshot, error) {
	if !constants.IsValidPaymentMethod(value) {
		return e.Snapshot(), fmt.Errorf("%w: unknown payment method %q", ErrInvalidArgument, value)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot.PaymentMethod = value
	return e.snapshot.Clone(), nil
}

func (e *CartSyncEngine) mutate(ctx context.Context, op string, call func(context.Context, models.Credential) error) (models.CartSnapshot, error) {
	if err := e.acquire(ctx); err != nil {
		return e.Snapshot(), fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer e.release()

	cred, err := e.resolve(ctx)
	if err != nil {
		e.log.Debugw("cart_mutation_unauthenticated", "operation", op, "reason", err)
		return e.Snapshot(), fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	gen := e.begin(op)
	if err := call(ctx, cred); err != nil {
		return e.Snapshot(), e.fail(op, gen, err)
	}
	snap, err := e.resync(ctx, cred, gen)
	if err != nil {
		return e.Snapshot(), e.fail(op, gen, err)
	}
	e.succeed(op, gen)
	return snap, nil
}

func (e *CartSyncEngine) acquire(ctx context.Context) error {
	select {
	case e.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *CartSyncEngine) release() {
	<-e.gate
}

func (e *CartSyncEngine) resolve(ctx context.Context) (models.Credential, error) {
	if e.auth == nil {
		return models.Credential{}, credential.ErrNotFound
	}
	return e.auth.Resolve(ctx)
}

// resync 拉取并替换视图；Reset 之后开始的拉取结果会被丢弃
func (e *CartSyncEngine) resync(ctx context.Context, cred models.Credential, gen uint64) (models.CartSnapshot, error) {
	payload, err := e.api.GetCart(ctx, cred.Token)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.CartSnapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return e.snapshot.Clone(), nil
	}
	next := models.CartSnapshot{
		Items:         make([]models.CartItem, 0, len(payload.Carts)),
		SubTotal:      payload.TotalOrderPrice,
		DeliOption:    e.snapshot.DeliOption,
		PaymentMethod: e.snapshot.PaymentMethod,
		SyncedAt:      e.opts.Now(),
	}
	for _, item := range payload.Carts {
		next.Items = append(next.Items, item.Clone())
	}
	next.Recompute(e.opts.DeliveryFee)
	e.snapshot = next
	return next.Clone(), nil
}

func (e *CartSyncEngine) lineQuantity(cartItemID uint) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, item := range e.snapshot.Items {
		if item.ID == cartItemID {
			return item.Quantity, true
		}
	}
	return 0, false
}

func (e *CartSyncEngine) begin(op string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.statusWritable(op) {
		e.status = SyncStatus{Operation: op, Phase: PhaseInflight, UpdatedAt: e.opts.Now()}
	}
	return e.generation
}

// statusWritable 变更持有 gate 期间，未经 gate 的 FetchCart 不覆盖状态
func (e *CartSyncEngine) statusWritable(op string) bool {
	return op != OpFetchCart || len(e.gate) == 0
}

func (e *CartSyncEngine) succeed(op string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || !e.statusWritable(op) {
		return
	}
	e.status = SyncStatus{Operation: op, Phase: PhaseResynced, UpdatedAt: e.opts.Now()}
}

// fail 归类错误、记录日志并写入状态
func (e *CartSyncEngine) fail(op string, gen uint64, err error) error {
	mapped := mapAPIError(err)
	switch {
	case errors.Is(mapped, ErrUnauthenticated):
		e.log.Debugw("cart_operation_unauthenticated", "operation", op, "error", err)
	default:
		e.log.Warnw("cart_operation_failed", "operation", op, "error", err)
	}
	e.recordFailure(op, gen, mapped)
	return mapped
}

func (e *CartSyncEngine) recordFailure(op string, gen uint64, mapped error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.generation && e.statusWritable(op) {
		e.status = SyncStatus{
			Operation: op,
			Phase:     PhaseFailed,
			Error:     mapped.Error(),
			UpdatedAt: e.opts.Now(),
			Err:       mapped,
		}
	}
}

// mapAPIError 将后端客户端错误映射为引擎错误分类
func mapAPIError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cartapi.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	case errors.Is(err, cartapi.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
}

func normalizeSize(size string) (string, error) {
	if size == "" {
		return constants.DefaultSize, nil
	}
	if !constants.IsValidSize(size) {
		return "", fmt.Errorf("%w: unknown size %q", ErrInvalidArgument, size)
	}
	return size, nil
}
