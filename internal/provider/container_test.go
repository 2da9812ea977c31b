package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/credential"

	"github.com/spf13/viper"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	return cfg
}

func TestNewContainerWithFileStore(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Credential.FilePath = filepath.Join(t.TempDir(), "local_storage.json")

	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if c.CartEngine == nil || c.CartAPI == nil {
		t.Fatalf("cart components should be initialized")
	}
	if _, err := c.AuthProvider.Resolve(context.Background()); !errors.Is(err, credential.ErrNotFound) {
		t.Fatalf("empty store should report not found, got %v", err)
	}
	snap := c.CartEngine.Snapshot()
	if snap.DeliFee.String() != "15000.00" {
		t.Fatalf("unexpected delivery fee: %s", snap.DeliFee)
	}
}

func TestNewContainerWithDatabaseStore(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Credential.Store = constants.CredentialStoreDatabase
	cfg.Database.DSN = fmt.Sprintf("file:container_%d?mode=memory&cache=shared", time.Now().UnixNano())

	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if c.DB == nil || c.StorageEntryRepo == nil {
		t.Fatalf("database store should open the database")
	}
}

func TestNewContainerRejectsBadBaseURL(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Credential.Store = constants.CredentialStoreMemory
	cfg.API.BaseURL = ""

	if _, err := NewContainer(cfg); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
