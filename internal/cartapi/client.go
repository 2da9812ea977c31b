package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/models"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	ErrConfigInvalid   = errors.New("cart api config invalid")
	ErrRequestFailed   = errors.New("cart api request failed")
	ErrResponseInvalid = errors.New("cart api response invalid")
	ErrUnauthorized    = errors.New("cart api unauthorized")
	ErrForbidden       = errors.New("cart api forbidden")
	ErrCircuitOpen     = errors.New("cart api circuit open")
)

// errServerStatus 标记 5xx 响应，仅用于熔断计数
var errServerStatus = errors.New("server status")

const maxResponseBytes = 4 << 20

// Config 客户端配置
type Config struct {
	BaseURL   string        // 后端地址，如 http://localhost:8080
	UserAgent string        // User-Agent
	Timeout   time.Duration // 单次请求超时，0 表示不限制
	Breaker   *BreakerConfig
}

// BreakerConfig 熔断配置，nil 表示不启用
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// CartPayload 购物车查询响应
type CartPayload struct {
	Carts           []models.CartItem `json:"carts"`
	TotalOrderPrice models.Money      `json:"totalOrderPrice"`
}

// OrderRequest 下单请求体
type OrderRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	MobileNo    string `json:"mobileNo"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	PaymentType string `json:"paymentType"`
}

// OrderResult 下单结果
type OrderResult struct {
	Message string `json:"message"`
}

type rawResponse struct {
	status int
	body   []byte
}

// Client 购物车 REST 接口客户端
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[*rawResponse]
	log       *zap.SugaredLogger
}

// NewClient 创建客户端
func NewClient(cfg Config, log *zap.SugaredLogger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: base_url %v", ErrConfigInvalid, err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	client := &Client{
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
	if cfg.Breaker != nil {
		client.breaker = newBreaker(*cfg.Breaker, log)
	}
	return client, nil
}

func newBreaker(cfg BreakerConfig, log *zap.SugaredLogger) *gobreaker.CircuitBreaker[*rawResponse] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        "cart-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnw("cart_api_breaker_state_changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// GetCart 查询购物车
func (c *Client) GetCart(ctx context.Context, token string) (*CartPayload, error) {
	body, err := c.do(ctx, http.MethodGet, constants.PathCart, nil, token, nil)
	if err != nil {
		return nil, err
	}
	var payload CartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode cart failed: %v", ErrResponseInvalid, err)
	}
	if payload.Carts == nil {
		payload.Carts = []models.CartItem{}
	}
	return &payload, nil
}

// AddCart 加入购物车（服务端按 商品+用户+规格 合并）
func (c *Client) AddCart(ctx context.Context, token string, productID, userID uint, size string) error {
	query := url.Values{}
	query.Set("pid", strconv.FormatUint(uint64(productID), 10))
	query.Set("uid", strconv.FormatUint(uint64(userID), 10))
	query.Set("size", size)
	_, err := c.do(ctx, http.MethodPost, constants.PathAddCart, query, token, nil)
	return err
}

// UpdateQuantity 调整行数量，direction 为 in / de
func (c *Client) UpdateQuantity(ctx context.Context, token string, direction string, cartItemID uint) error {
	query := url.Values{}
	query.Set("sy", direction)
	query.Set("cid", strconv.FormatUint(uint64(cartItemID), 10))
	_, err := c.do(ctx, http.MethodPut, constants.PathCartUpdate, query, token, nil)
	return err
}

// DeleteItem 删除行
func (c *Client) DeleteItem(ctx context.Context, token string, cartItemID uint) error {
	query := url.Values{}
	query.Set("cid", strconv.FormatUint(uint64(cartItemID), 10))
	_, err := c.do(ctx, http.MethodDelete, constants.PathCartDelete, query, token, nil)
	return err
}

// ClearCart 清空购物车
func (c *Client) ClearCart(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, constants.PathCartClear, nil, token, nil)
	return err
}

// SaveOrder 提交订单
func (c *Client) SaveOrder(ctx context.Context, token string, order OrderRequest) (*OrderResult, error) {
	body, err := c.do(ctx, http.MethodPost, constants.PathSaveOrder, nil, token, order)
	if err != nil {
		return nil, err
	}
	var result OrderResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%w: decode order result failed: %v", ErrResponseInvalid, err)
		}
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, payload interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body failed: %v", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", constants.AuthorizationPrefix+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	started := time.Now()
	raw, err := c.send(req)
	if err != nil && !errors.Is(err, errServerStatus) {
		c.log.Debugw("cart_api_request_failed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"error", err,
		)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: request_id=%s", ErrCircuitOpen, requestID)
		}
		return nil, fmt.Errorf("%w: request_id=%s: %w", ErrRequestFailed, requestID, err)
	}

	c.log.Debugw("cart_api_request_done",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", raw.status,
		"latency", time.Since(started),
	)
	if err := classifyStatus(raw, requestID); err != nil {
		return nil, err
	}
	return raw.body, nil
}

func (c *Client) send(req *http.Request) (*rawResponse, error) {
	exec := func() (*rawResponse, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		raw := &rawResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return raw, errServerStatus
		}
		return raw, nil
	}
	if c.breaker == nil {
		return exec()
	}
	return c.breaker.Execute(exec)
}

func classifyStatus(raw *rawResponse, requestID string) error {
	if raw.status >= 200 && raw.status < 300 {
		return nil
	}
	message := errorMessage(raw.body)
	switch raw.status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: request_id=%s %s", ErrUnauthorized, requestID, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: request_id=%s %s", ErrForbidden, requestID, message)
	default:
		return fmt.Errorf("%w: request_id=%s status=%d %s", ErrRequestFailed, requestID, raw.status, message)
	}
}

// errorMessage 提取 {"error": "..."} 中的提示，无法解析时返回空
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
