package app

import (
	"context"
	"errors"
	"time"

	"github.com/coffeeshop/cartsync/internal/models"
	"github.com/coffeeshop/cartsync/internal/service"

	"go.uber.org/zap"
)

// CartFetcher 同步服务依赖的引擎能力
type CartFetcher interface {
	FetchCart(ctx context.Context) (models.CartSnapshot, error)
}

// SyncService 启动时拉取一次购物车，可选按固定间隔重新拉取
type SyncService struct {
	engine   CartFetcher
	interval time.Duration
	log      *zap.SugaredLogger
}

// NewSyncService 创建购物车同步服务，interval <= 0 时仅同步一次
func NewSyncService(engine CartFetcher, interval time.Duration, log *zap.SugaredLogger) *SyncService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SyncService{engine: engine, interval: interval, log: log}
}

// Name 服务名称
func (s *SyncService) Name() string {
	return "cart_sync"
}

// Start 阻塞直到 ctx 结束
func (s *SyncService) Start(ctx context.Context) error {
	if s == nil || s.engine == nil {
		return errors.New("cart sync service not initialized")
	}
	s.fetch(ctx)
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.fetch(ctx)
		}
	}
}

// Stop 由 Start 的 ctx 负责退出
func (s *SyncService) Stop(ctx context.Context) error {
	return nil
}

func (s *SyncService) fetch(ctx context.Context) {
	snap, err := s.engine.FetchCart(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNetwork) && ctx.Err() != nil {
			return
		}
		s.log.Warnw("cart_sync_failed", "error", err)
		return
	}
	s.log.Debugw("cart_sync_done", "items", snap.ItemCount, "total_payment", snap.TotalPayment.String())
}
