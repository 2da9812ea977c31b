package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/coffeeshop/cartsync/internal/cache"
	"github.com/coffeeshop/cartsync/internal/cartapi"
	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/credential"
	"github.com/coffeeshop/cartsync/internal/logger"
	"github.com/coffeeshop/cartsync/internal/models"
	"github.com/coffeeshop/cartsync/internal/repository"
	"github.com/coffeeshop/cartsync/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config
	DB     *gorm.DB

	// Credential
	StorageEntryRepo repository.StorageEntryRepository
	CredentialStore  credential.Store
	AuthProvider     credential.AuthProvider

	// Cart
	CartAPI    *cartapi.Client
	CartEngine *service.CartSyncEngine
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	c := &Container{Config: cfg}

	// 1. 初始化凭证存储
	if err := c.initCredentialStore(); err != nil {
		return nil, err
	}

	// 2. 初始化后端客户端与同步引擎
	if err := c.initCart(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initCredentialStore() error {
	cfg := c.Config
	switch cfg.Credential.Store {
	case constants.CredentialStoreMemory:
		c.CredentialStore = credential.NewMemoryStore()
	case constants.CredentialStoreFile:
		c.CredentialStore = credential.NewFileStore(cfg.Credential.FilePath)
	case constants.CredentialStoreDatabase:
		db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		})
		if err != nil {
			return fmt.Errorf("open database failed: %w", err)
		}
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate database failed: %w", err)
		}
		c.DB = db
		c.StorageEntryRepo = repository.NewStorageEntryRepository(db)
		c.CredentialStore = credential.NewDatabaseStore(c.StorageEntryRepo)
	case constants.CredentialStoreRedis:
		if err := cache.InitRedis(&cfg.Redis); err != nil {
			return fmt.Errorf("init redis failed: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			logger.Warnw("provider_redis_ping_failed", "error", err)
		}
		c.CredentialStore = credential.NewRedisStore(0)
	default:
		return fmt.Errorf("unsupported credential store: %s", cfg.Credential.Store)
	}
	c.AuthProvider = credential.NewStoreAuthProvider(c.CredentialStore, cfg.Credential.Key)
	logger.Infow("provider_credential_store_ready", "store", cfg.Credential.Store)
	return nil
}

func (c *Container) initCart() error {
	cfg := c.Config
	apiCfg := cartapi.Config{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout(),
	}
	if cfg.Breaker.Enabled {
		apiCfg.Breaker = &cartapi.BreakerConfig{
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            time.Duration(cfg.Breaker.IntervalSeconds) * time.Second,
			Timeout:             time.Duration(cfg.Breaker.TimeoutSeconds) * time.Second,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		}
	}
	client, err := cartapi.NewClient(apiCfg, logger.Component("cart_api"))
	if err != nil {
		return err
	}
	c.CartAPI = client
	c.CartEngine = service.NewCartSyncEngine(client, c.AuthProvider, service.CartSyncOptions{
		DeliveryFee:          models.NewMoneyFromInt(cfg.Cart.DeliveryFee),
		DefaultDeliOption:    cfg.Cart.DefaultDeliOption,
		DefaultPaymentMethod: cfg.Cart.DefaultPaymentMethod,
	}, logger.Component("cart_engine"))
	return nil
}

// Close 释放外部连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cache.Close()
}
