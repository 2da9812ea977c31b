package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotFound 存储中没有凭证
	ErrNotFound = errors.New("credential not found")
	// ErrMalformed 凭证格式非法
	ErrMalformed = errors.New("credential malformed")
	// ErrExpired 凭证已过期
	ErrExpired = errors.New("credential expired")
	// ErrStoreUnavailable 存储后端未就绪
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// AuthProvider 提供当前登录凭证
type AuthProvider interface {
	Resolve(ctx context.Context) (models.Credential, error)
}

// StoreAuthProvider 从键值存储读取并校验凭证，只读不写
type StoreAuthProvider struct {
	store Store
	key   string
	now   func() time.Time
}

// NewStoreAuthProvider 创建基于存储的凭证提供者，key 为空时使用默认键
func NewStoreAuthProvider(store Store, key string) *StoreAuthProvider {
	key = strings.TrimSpace(key)
	if key == "" {
		key = constants.CredentialStorageKey
	}
	return &StoreAuthProvider{store: store, key: key, now: time.Now}
}

// Resolve 读取并校验凭证
func (p *StoreAuthProvider) Resolve(ctx context.Context) (models.Credential, error) {
	raw, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return models.Credential{}, ErrNotFound
	}
	var cred models.Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := Validate(cred, p.now()); err != nil {
		return models.Credential{}, err
	}
	return cred, nil
}

// Validate 校验凭证：token 须为 JWT 结构，exp（如有）晚于 now，user.id 为正
func Validate(cred models.Credential, now time.Time) error {
	token := strings.TrimSpace(cred.Token)
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrMalformed)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if exp != nil && !exp.After(now) {
		return ErrExpired
	}
	if cred.User.ID == 0 {
		return fmt.Errorf("%w: missing user id", ErrMalformed)
	}
	return nil
}

// Write 写入凭证（供登录流程与开发工具使用）
func Write(ctx context.Context, store Store, key string, cred models.Credential) error {
	if err := Validate(cred, time.Now()); err != nil {
		return err
	}
	payload, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		key = constants.CredentialStorageKey
	}
	return store.Set(ctx, key, string(payload))
}

// StaticAuthProvider 固定返回同一凭证
type StaticAuthProvider struct {
	Credential models.Credential
	Err        error
}

// Resolve 返回固定凭证
func (p StaticAuthProvider) Resolve(_ context.Context) (models.Credential, error) {
	if p.Err != nil {
		return models.Credential{}, p.Err
	}
	return p.Credential, nil
}
