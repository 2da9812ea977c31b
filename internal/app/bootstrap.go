package app

import (
	"errors"
	"time"

	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/logger"
	"github.com/coffeeshop/cartsync/internal/provider"
	"github.com/coffeeshop/cartsync/internal/router"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}

	var services []Service

	// 初始化 HTTP 网关
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化购物车同步
	if mode == ModeAll || mode == ModeSync {
		interval := time.Duration(cfg.Cart.RefreshIntervalSecs) * time.Second
		services = append(services, NewSyncService(container.CartEngine, interval, logger.Component("cart_sync")))
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	container, err := provider.NewContainer(opts.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			opts.Logger.Warnw("app_container_close_failed", "error", err)
		}
	}()

	runner, err := BuildRunner(opts.Config, container, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "api_base_url", opts.Config.API.BaseURL)
	return RunWithOptions(runner, opts)
}
