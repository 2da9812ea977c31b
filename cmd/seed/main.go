package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/credential"
	"github.com/coffeeshop/cartsync/internal/logger"
	"github.com/coffeeshop/cartsync/internal/models"
	"github.com/coffeeshop/cartsync/internal/provider"

	"github.com/golang-jwt/jwt/v5"
)

// 开发辅助：把登录凭证写入配置的本地存储，模拟登录流程
func main() {
	token := flag.String("token", "", "后端签发的 token；为空时用 -secret 本地签发")
	secret := flag.String("secret", "", "本地签发 token 使用的 HS256 密钥")
	ttl := flag.Duration("ttl", 24*time.Hour, "本地签发 token 的有效期")
	userID := flag.Uint("user-id", 1, "用户 ID")
	name := flag.String("name", "Nguyễn Văn A", "用户名")
	email := flag.String("email", "", "邮箱")
	role := flag.String("role", "USER", "角色")
	remove := flag.Bool("delete", false, "删除已保存的凭证")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	container, err := provider.NewContainer(cfg)
	if err != nil {
		stdLog.Fatalf("初始化失败: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	key := cfg.Credential.Key
	if *remove {
		if err := container.CredentialStore.Delete(ctx, key); err != nil {
			stdLog.Fatalf("删除凭证失败: %v", err)
		}
		stdLog.Printf("credential removed from %s store", cfg.Credential.Store)
		return
	}

	if *token == "" {
		if *secret == "" {
			stdLog.Fatalf("需要 -token 或 -secret")
		}
		minted, err := mintToken(*secret, *userID, *ttl)
		if err != nil {
			stdLog.Fatalf("签发 token 失败: %v", err)
		}
		*token = minted
	}

	cred := models.Credential{
		Token: *token,
		User: models.CredentialUser{
			ID:    *userID,
			Name:  *name,
			Email: *email,
			Role:  *role,
		},
	}
	if err := credential.Validate(cred, time.Now()); err != nil {
		stdLog.Fatalf("凭证无效: %v", err)
	}
	if err := credential.Write(ctx, container.CredentialStore, key, cred); err != nil {
		stdLog.Fatalf("写入凭证失败: %v", err)
	}
	stdLog.Printf("credential for user %d written to %s store", *userID, cfg.Credential.Store)
}

func mintToken(secret string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
