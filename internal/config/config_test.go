package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Driver != StoreMongo {
		t.Errorf("expected mongo store, got %s", cfg.Store.Driver)
	}
	if cfg.Mongo.Database != "park_and_ride" {
		t.Errorf("expected park_and_ride database, got %s", cfg.Mongo.Database)
	}
	if cfg.Booking.Currency != "INR" {
		t.Errorf("expected INR, got %s", cfg.Booking.Currency)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoad_StoreDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	t.Setenv("STORE_DRIVER", "Postgres")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != StorePostgres {
		t.Errorf("expected postgres store, got %s", cfg.Store.Driver)
	}

	t.Setenv("STORE_DRIVER", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
