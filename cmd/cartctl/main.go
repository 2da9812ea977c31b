package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/logger"
	"github.com/coffeeshop/cartsync/internal/models"
	"github.com/coffeeshop/cartsync/internal/provider"
	"github.com/coffeeshop/cartsync/internal/service"
)

const usage = `usage: cartctl [flags] <command> [args]

commands:
  fetch                       拉取购物车
  add <product_id> [size]     加入购物车（size 默认 medium）
  inc <cart_item_id>          数量 +1
  dec <cart_item_id>          数量 -1（为 1 时删除该行）
  remove <cart_item_id>       删除行
  clear                       清空购物车
  deli <delivery|pick-up>     切换配送方式
`

func main() {
	os.Exit(realMain())
}

// realMain 返回退出码，defer 的资源释放在 os.Exit 之前完成
func realMain() int {
	timeout := flag.Duration("timeout", 15*time.Second, "单次命令超时")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())

	container, err := provider.NewContainer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartctl: 初始化失败: %v\n", err)
		return 1
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	return execute(ctx, container.CartEngine, flag.Args(), os.Stdout, os.Stderr)
}

func execute(ctx context.Context, engine *service.CartSyncEngine, args []string, stdout, stderr io.Writer) int {
	snap, err := run(ctx, engine, args)
	if err != nil {
		fmt.Fprintf(stderr, "cartctl: %v\n", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		fmt.Fprintf(stderr, "cartctl: 输出失败: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, engine *service.CartSyncEngine, args []string) (models.CartSnapshot, error) {
	// 每条命令都先同步一次，保证本进程的视图与服务端一致
	if _, err := engine.FetchCart(ctx); err != nil {
		return models.CartSnapshot{}, err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "fetch":
		return engine.Snapshot(), nil
	case "add":
		if len(rest) < 1 {
			return models.CartSnapshot{}, fmt.Errorf("add requires <product_id>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return models.CartSnapshot{}, err
		}
		size := ""
		if len(rest) > 1 {
			size = rest[1]
		}
		return engine.AddToCart(ctx, id, size)
	case "inc", "dec":
		if len(rest) < 1 {
			return models.CartSnapshot{}, fmt.Errorf("%s requires <cart_item_id>", cmd)
		}
		id, err := parseID(rest[0])
		if err != nil {
			return models.CartSnapshot{}, err
		}
		direction := constants.QuantityIncrement
		if cmd == "dec" {
			direction = constants.QuantityDecrement
		}
		return engine.UpdateQuantity(ctx, direction, id)
	case "remove":
		if len(rest) < 1 {
			return models.CartSnapshot{}, fmt.Errorf("remove requires <cart_item_id>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return models.CartSnapshot{}, err
		}
		return engine.RemoveFromCart(ctx, id)
	case "clear":
		return engine.ClearCart(ctx)
	case "deli":
		if len(rest) < 1 {
			return models.CartSnapshot{}, fmt.Errorf("deli requires <delivery|pick-up>")
		}
		return engine.UpdateDeliOption(rest[0])
	default:
		return models.CartSnapshot{}, fmt.Errorf("unknown command %q", cmd)
	}
}

func parseID(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(v), nil
}
