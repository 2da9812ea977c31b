// Package cartapitest 提供内存版购物车后端，供客户端与引擎测试使用
package cartapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/models"

	"github.com/gin-gonic/gin"
)

// OrderRecord 收到的订单
type OrderRecord struct {
	UserID uint
	Body   map[string]interface{}
}

type line struct {
	id        uint
	productID uint
	userID    uint
	size      string
	quantity  int
}

type failure struct {
	status int
	times  int
}

// Backend 内存购物车后端
type Backend struct {
	mu        sync.Mutex
	token     string
	userID    uint
	forbidden bool
	products  map[uint]models.Product
	lines     []*line
	nextID    uint
	orders    []OrderRecord
	failures  map[string]*failure
	calls     []string
	requestID []string
	hook      func(c *gin.Context)
	server    *httptest.Server
}

// New 启动后端，token/userID 为唯一接受的登录身份
func New(t testing.TB, token string, userID uint) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := &Backend{
		token:    token,
		userID:   userID,
		products: make(map[uint]models.Product),
		failures: make(map[string]*failure),
		nextID:   1,
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL 后端地址
func (b *Backend) URL() string {
	return b.server.URL
}

// AddProduct 注册商品
func (b *Backend) AddProduct(p models.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products[p.ID] = p
}

// SetForbidden 之后所有请求返回 403
func (b *Backend) SetForbidden(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forbidden = v
}

// FailNext 让 method+path 接下来 times 次返回 status
func (b *Backend) FailNext(method, path string, status int, times int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = &failure{status: status, times: times}
}

// OnRequest 在每个请求处理前调用 fn（在锁外执行）
func (b *Backend) OnRequest(fn func(c *gin.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = fn
}

// Calls 已收到的请求，格式为 "METHOD /path?query"
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// RequestIDs 已收到请求的 X-Request-ID
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestID...)
}

// Orders 已收到的订单
func (b *Backend) Orders() []OrderRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]OrderRecord(nil), b.orders...)
}

// Quantity 返回行数量，不存在时为 0
func (b *Backend) Quantity(cartItemID uint) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.lines {
		if l.id == cartItemID {
			return l.quantity
		}
	}
	return 0
}

// LineCount 当前行数
func (b *Backend) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api/user", b.guard)
	api.GET("/cart", b.getCart)
	api.POST("/add-cart", b.addCart)
	api.PUT("/cart/update", b.updateCart)
	api.DELETE("/cart/delete", b.deleteCart)
	api.DELETE("/cart/clear", b.clearCart)
	api.POST("/save-order", b.saveOrder)
	return r
}

func (b *Backend) guard(c *gin.Context) {
	b.mu.Lock()
	call := c.Request.Method + " " + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		call += "?" + c.Request.URL.RawQuery
	}
	b.calls = append(b.calls, call)
	b.requestID = append(b.requestID, c.GetHeader(constants.RequestIDHeader))
	hook := b.hook
	b.mu.Unlock()

	if hook != nil {
		hook(c)
	}

	if status, msg := b.reject(c); status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	// 处理函数自行加锁，这里必须已释放 b.mu
	c.Next()
}

// reject 判断请求是否被注入失败或鉴权拦截，返回 0 表示放行
func (b *Backend) reject(c *gin.Context) (int, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.failures[c.Request.Method+" "+c.Request.URL.Path]; ok && f.times > 0 {
		f.times--
		return f.status, "injected failure"
	}
	if c.GetHeader("Authorization") != constants.AuthorizationPrefix+b.token {
		return http.StatusUnauthorized, "Chưa đăng nhập"
	}
	if b.forbidden {
		return http.StatusForbidden, "Forbidden"
	}
	return 0, ""
}

func (b *Backend) getCart(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	carts := make([]map[string]interface{}, 0, len(b.lines))
	total := models.Zero()
	for _, l := range b.lines {
		product := b.products[l.productID]
		unit, _ := product.PriceBySize(l.size)
		lineTotal := unit.MulInt(l.quantity)
		total = total.Add(lineTotal)
		carts = append(carts, map[string]interface{}{
			"id":         l.id,
			"product":    product,
			"quantity":   l.quantity,
			"size":       l.size,
			"totalPrice": json.RawMessage(lineTotal.Decimal.String()),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"carts":           carts,
		"totalOrderPrice": json.RawMessage(total.Decimal.String()),
	})
}

func (b *Backend) addCart(c *gin.Context) {
	pid, _ := strconv.ParseUint(c.Query("pid"), 10, 64)
	uid, _ := strconv.ParseUint(c.Query("uid"), 10, 64)
	size := strings.ToLower(c.DefaultQuery("size", constants.DefaultSize))

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[uint(pid)]; !ok || uint(uid) != b.userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể thêm vào giỏ hàng"})
		return
	}
	for _, l := range b.lines {
		if l.productID == uint(pid) && l.userID == uint(uid) && l.size == size {
			l.quantity++
			c.JSON(http.StatusOK, gin.H{"message": "Đã thêm sản phẩm vào giỏ hàng"})
			return
		}
	}
	b.lines = append(b.lines, &line{id: b.nextID, productID: uint(pid), userID: uint(uid), size: size, quantity: 1})
	b.nextID++
	c.JSON(http.StatusOK, gin.H{"message": "Đã thêm sản phẩm vào giỏ hàng"})
}

func (b *Backend) updateCart(c *gin.Context) {
	cid, _ := strconv.ParseUint(c.Query("cid"), 10, 64)
	sy := c.Query("sy")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.lines {
		if l.id != uint(cid) {
			continue
		}
		if sy == constants.QuantityIncrement {
			l.quantity++
		} else if l.quantity <= 1 {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
		} else {
			l.quantity--
		}
		break
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã cập nhật số lượng"})
}

func (b *Backend) deleteCart(c *gin.Context) {
	cid, _ := strconv.ParseUint(c.Query("cid"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.lines {
		if l.id == uint(cid) {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa sản phẩm khỏi giỏ hàng"})
}

func (b *Backend) clearCart(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa toàn bộ giỏ hàng"})
}

func (b *Backend) saveOrder(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, OrderRecord{UserID: b.userID, Body: body})
	c.JSON(http.StatusOK, gin.H{"message": "Đã lưu đơn hàng thành công"})
}
