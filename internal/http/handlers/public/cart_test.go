package public

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/coffeeshop/cartsync/internal/cartapi"
	"github.com/coffeeshop/cartsync/internal/cartapi/cartapitest"
	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/credential"
	"github.com/coffeeshop/cartsync/internal/http/response"
	"github.com/coffeeshop/cartsync/internal/models"
	"github.com/coffeeshop/cartsync/internal/provider"
	"github.com/coffeeshop/cartsync/internal/service"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func newHandlerForTest(t *testing.T, auth credential.AuthProvider) (*gin.Engine, *cartapitest.Backend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := cartapitest.New(t, "tok", 9)
	medium := models.NewMoneyFromInt(30000)
	backend.AddProduct(models.Product{ID: 42, Title: "Cà phê sữa", PriceMedium: &medium})

	client, err := cartapi.NewClient(cartapi.Config{BaseURL: backend.URL()}, nil)
	if err != nil {
		t.Fatalf("create client failed: %v", err)
	}
	engine := service.NewCartSyncEngine(client, auth, service.CartSyncOptions{
		DeliveryFee:          models.NewMoneyFromInt(constants.DefaultDeliveryFee),
		DefaultDeliOption:    constants.DeliOptionDeliver,
		DefaultPaymentMethod: constants.PaymentMethodCash,
	}, nil)

	h := New(&provider.Container{Config: &config.Config{}, CartAPI: client, CartEngine: engine})
	r := gin.New()
	r.GET("/cart", h.GetCart)
	r.DELETE("/cart", h.ClearCart)
	r.GET("/cart/status", h.GetCartStatus)
	r.POST("/cart/sync", h.SyncCart)
	r.POST("/cart/items", h.AddCartItem)
	r.PUT("/cart/items/:id", h.UpdateCartItem)
	r.DELETE("/cart/items/:id", h.DeleteCartItem)
	r.PUT("/cart/deli-option", h.UpdateDeliOption)
	r.PUT("/cart/payment-method", h.UpdatePaymentMethod)
	r.POST("/cart/checkout", h.Checkout)
	r.POST("/session/reset", h.ResetSession)
	return r, backend
}

func authed() credential.AuthProvider {
	return credential.StaticAuthProvider{Credential: models.Credential{
		Token: "tok",
		User:  models.CredentialUser{ID: 9, Name: "Nguyen Van An"},
	}}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func decodeSnapshot(t *testing.T, raw json.RawMessage) models.CartSnapshot {
	t.Helper()
	var snap models.CartSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal snapshot failed: %v", err)
	}
	return snap
}

func TestAddUpdateDeleteFlow(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())

	resp := doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42, Size: "medium"})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("add want ok got %d (%s)", resp.StatusCode, resp.Msg)
	}
	snap := decodeSnapshot(t, resp.Data)
	if snap.ItemCount != 1 || snap.TotalPayment.String() != "45000.00" {
		t.Fatalf("unexpected snapshot after add: %+v", snap)
	}
	lineID := snap.Items[0].ID

	resp = doJSON(t, r, http.MethodPut, "/cart/items/"+uintString(lineID), UpdateCartItemRequest{Direction: "in"})
	snap = decodeSnapshot(t, resp.Data)
	if snap.Items[0].Quantity != 2 || backend.Quantity(lineID) != 2 {
		t.Fatalf("quantity should be 2, got %d", snap.Items[0].Quantity)
	}

	resp = doJSON(t, r, http.MethodDelete, "/cart/items/"+uintString(lineID), nil)
	snap = decodeSnapshot(t, resp.Data)
	if snap.ItemCount != 0 || backend.LineCount() != 0 {
		t.Fatalf("cart should be empty after delete")
	}
}

func TestAddCartItemValidation(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())

	resp := doJSON(t, r, http.MethodPost, "/cart/items", map[string]interface{}{"size": "medium"})
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("missing product id want 400 got %d", resp.StatusCode)
	}
	resp = doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42, Size: "venti"})
	if resp.StatusCode != response.CodeBadRequest || resp.Msg != "Invalid size" {
		t.Fatalf("bad size want 400 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	resp = doJSON(t, r, http.MethodPut, "/cart/items/abc", UpdateCartItemRequest{Direction: "in"})
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("bad id want 400 got %d", resp.StatusCode)
	}
	resp = doJSON(t, r, http.MethodPut, "/cart/items/1", UpdateCartItemRequest{Direction: "up"})
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("bad direction want 400 got %d", resp.StatusCode)
	}
	if len(backend.Calls()) != 0 {
		t.Fatalf("invalid requests must not reach backend: %v", backend.Calls())
	}
}

func TestUnauthenticatedMutation(t *testing.T) {
	r, backend := newHandlerForTest(t, credential.StaticAuthProvider{Err: credential.ErrNotFound})

	resp := doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42})
	if resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("want 401 got %d", resp.StatusCode)
	}
	if resp.Msg != "Please log in to continue" {
		t.Fatalf("unexpected message: %s", resp.Msg)
	}
	if len(backend.Calls()) != 0 {
		t.Fatalf("backend should not be called without credential")
	}

	resp = doJSON(t, r, http.MethodPost, "/cart/sync", nil)
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("sync without credential should be a no-op, got %d", resp.StatusCode)
	}
}

func TestBackendFailureMapsToBadGateway(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())
	backend.FailNext(http.MethodPost, constants.PathAddCart, http.StatusInternalServerError, 1)

	resp := doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42})
	if resp.StatusCode != response.CodeBadGateway {
		t.Fatalf("want 502 got %d", resp.StatusCode)
	}

	backend.SetForbidden(true)
	resp = doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42})
	if resp.StatusCode != response.CodeForbidden {
		t.Fatalf("want 403 got %d", resp.StatusCode)
	}
}

func TestDeliOptionAndPaymentMethod(t *testing.T) {
	r, _ := newHandlerForTest(t, authed())

	resp := doJSON(t, r, http.MethodPut, "/cart/deli-option", ValueRequest{Value: constants.DeliOptionPickUp})
	snap := decodeSnapshot(t, resp.Data)
	if snap.DeliOption != constants.DeliOptionPickUp || snap.DeliFee.String() != "0.00" {
		t.Fatalf("pick-up should zero the fee: %+v", snap)
	}

	resp = doJSON(t, r, http.MethodPut, "/cart/deli-option", ValueRequest{Value: "drone"})
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("unknown deli option want 400 got %d", resp.StatusCode)
	}

	resp = doJSON(t, r, http.MethodPut, "/cart/payment-method", ValueRequest{Value: constants.PaymentMethodMomo})
	snap = decodeSnapshot(t, resp.Data)
	if snap.PaymentMethod != constants.PaymentMethodMomo {
		t.Fatalf("payment method not applied: %s", snap.PaymentMethod)
	}

	resp = doJSON(t, r, http.MethodPost, "/session/reset", nil)
	snap = decodeSnapshot(t, resp.Data)
	if snap.DeliOption != constants.DeliOptionDeliver || snap.PaymentMethod != constants.PaymentMethodCash {
		t.Fatalf("reset should restore defaults: %+v", snap)
	}
}

func TestCheckoutHandler(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())

	resp := doJSON(t, r, http.MethodPost, "/cart/checkout", service.CheckoutInput{MobileNo: "0900000000", Address: "1 Lê Lợi"})
	if resp.StatusCode != response.CodeBadRequest || resp.Msg != "Your cart is empty" {
		t.Fatalf("empty cart checkout want 400 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42})

	resp = doJSON(t, r, http.MethodPost, "/cart/checkout", service.CheckoutInput{Address: "1 Lê Lợi"})
	if resp.StatusCode != response.CodeBadRequest || resp.Msg != "Mobile number and address are required" {
		t.Fatalf("missing mobile want 400 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	resp = doJSON(t, r, http.MethodPost, "/cart/checkout", service.CheckoutInput{MobileNo: "0900000000", Address: "1 Lê Lợi"})
	if resp.StatusCode != response.CodeOK || resp.Msg != "Order placed" {
		t.Fatalf("checkout want ok got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var result service.CheckoutResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("unmarshal checkout result failed: %v", err)
	}
	if result.Snapshot.ItemCount != 0 {
		t.Fatalf("cart should be empty after checkout")
	}
	if len(backend.Orders()) != 1 || backend.LineCount() != 0 {
		t.Fatalf("backend should hold one order and no lines")
	}
}

func TestAddCartItemQuantityCap(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())

	for _, qty := range []int{-1, constants.MaxAddQuantity + 1, 1000000} {
		resp := doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42, Quantity: qty})
		if resp.StatusCode != response.CodeBadRequest || resp.Msg != "Invalid quantity" {
			t.Fatalf("quantity %d want 400 got %d (%s)", qty, resp.StatusCode, resp.Msg)
		}
	}
	if len(backend.Calls()) != 0 {
		t.Fatalf("rejected quantities must not reach backend: %v", backend.Calls())
	}

	resp := doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42, Quantity: constants.MaxAddQuantity})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("quantity at cap want ok got %d (%s)", resp.StatusCode, resp.Msg)
	}
}

func TestCheckoutReportsOrderWhenClearFails(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())
	doJSON(t, r, http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 42})
	backend.FailNext(http.MethodDelete, constants.PathCartClear, http.StatusInternalServerError, 1)

	resp := doJSON(t, r, http.MethodPost, "/cart/checkout", service.CheckoutInput{MobileNo: "0900000000", Address: "1 Lê Lợi"})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("placed order must be reported as success, got %d (%s)", resp.StatusCode, resp.Msg)
	}
	if resp.Msg != "Order placed, the cart will refresh shortly" {
		t.Fatalf("unexpected message: %s", resp.Msg)
	}
	var result service.CheckoutResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("unmarshal checkout result failed: %v", err)
	}
	if !result.ClearPending {
		t.Fatalf("clear_pending should be set")
	}
	if len(backend.Orders()) != 1 {
		t.Fatalf("backend should hold exactly one order, got %d", len(backend.Orders()))
	}

	resp = doJSON(t, r, http.MethodDelete, "/cart", nil)
	if resp.StatusCode != response.CodeOK || backend.LineCount() != 0 {
		t.Fatalf("follow-up clear should converge, got %d", resp.StatusCode)
	}
}

func TestGetCartDoesNotCallBackend(t *testing.T) {
	r, backend := newHandlerForTest(t, authed())

	resp := doJSON(t, r, http.MethodGet, "/cart", nil)
	snap := decodeSnapshot(t, resp.Data)
	if snap.ItemCount != 0 || snap.TotalPayment.String() != "15000.00" {
		t.Fatalf("unexpected empty snapshot: %+v", snap)
	}
	resp = doJSON(t, r, http.MethodGet, "/cart/status", nil)
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("status want ok got %d", resp.StatusCode)
	}
	if len(backend.Calls()) != 0 {
		t.Fatalf("reads must be served locally: %v", backend.Calls())
	}
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
