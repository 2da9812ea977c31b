package i18n

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	LocaleVI = "vi-VN"
	LocaleEN = "en-US"
)

var (
	defaultMu     sync.RWMutex
	defaultLocale = LocaleVI
)

// SetDefaultLocale 设置默认语言，未知语言忽略
func SetDefaultLocale(locale string) {
	normalized, ok := normalize(locale)
	if !ok {
		return
	}
	defaultMu.Lock()
	defaultLocale = normalized
	defaultMu.Unlock()
}

// DefaultLocale 当前默认语言
func DefaultLocale() string {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLocale
}

// ResolveLocale 依次从 ?lang、X-Locale、Accept-Language 解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale()
	}
	candidates := []string{c.Query("lang"), c.GetHeader("X-Locale")}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag, _, _ := strings.Cut(part, ";")
		candidates = append(candidates, tag)
	}
	for _, candidate := range candidates {
		if locale, ok := normalize(candidate); ok {
			return locale
		}
	}
	return DefaultLocale()
}

// T 翻译消息，缺失时回退默认语言，再回退 key 本身
func T(locale, key string, args ...interface{}) string {
	msg, ok := lookup(locale, key)
	if !ok {
		msg, ok = lookup(DefaultLocale(), key)
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}

func normalize(raw string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return "", false
	case value == "vi" || strings.HasPrefix(value, "vi-") || strings.HasPrefix(value, "vi_"):
		return LocaleVI, true
	case value == "en" || strings.HasPrefix(value, "en-") || strings.HasPrefix(value, "en_"):
		return LocaleEN, true
	}
	return "", false
}
