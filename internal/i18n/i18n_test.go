package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		target string
		header map[string]string
		want   string
	}{
		{"default", "/", nil, LocaleVI},
		{"query", "/?lang=en", nil, LocaleEN},
		{"x-locale", "/", map[string]string{"X-Locale": "en_US"}, LocaleEN},
		{"accept-language", "/", map[string]string{"Accept-Language": "fr-FR;q=0.9, en-GB;q=0.8"}, LocaleEN},
		{"unknown", "/", map[string]string{"Accept-Language": "de"}, LocaleVI},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tc.target, nil)
			for k, v := range tc.header {
				c.Request.Header.Set(k, v)
			}
			if got := ResolveLocale(c); got != tc.want {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}
}

func TestTFallsBack(t *testing.T) {
	if got := T(LocaleEN, "error.cart_empty"); got != "Your cart is empty" {
		t.Fatalf("unexpected message: %s", got)
	}
	if got := T("fr-FR", "error.cart_empty"); got != "Giỏ hàng đang trống" {
		t.Fatalf("unknown locale should fall back to default, got %s", got)
	}
	if got := T(LocaleEN, "error.nope"); got != "error.nope" {
		t.Fatalf("missing key should return key, got %s", got)
	}
}
