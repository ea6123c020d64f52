package config

import (
	"context"
	"errors"
	"testing"
)

func TestDelete(t *testing.T) {
	store := &ConfigStoreImpl{
		store: make(map[string]string),
	}
	store.store["SIMPLE"] = "test"

	ctx := context.TODO()

	if str, err := store.Get(ctx, "SIMPLE"); err != nil || str != "test" {
		t.Log(str)
		t.Log(err)
		t.Error("Config is not loaded correctly (level 0)")
	}

	if err := store.Set(ctx, "SIMPLE", "", true); err != nil {
		t.Error(err)
	}

	if str, err := store.Get(ctx, "SIMPLE"); err == nil || str != "" {
		t.Log(str)
		t.Log(err)
		t.Error("Config is not deleted correctly (level 0)")
	}
}

func TestSet(t *testing.T) {
	store := &ConfigStoreImpl{
		store: make(map[string]string),
	}

	err := store.Set(context.Background(), "TEST_KEY", "TEST_VALUE", false)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	value, ok := store.store["TEST_KEY"]
	if !ok || value != "TEST_VALUE" {
		t.Errorf("Expected 'TEST_VALUE', got '%v'", value)
	}

	err = store.Set(context.Background(), "TEST_KEY", "OTHER", false)
	if !errors.Is(err, ErrConfigKey) {
		t.Errorf("Expected key in store error, got %v", err)
	}

	err = store.Set(context.Background(), "TEST_KEY", "", false)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	_, ok = store.store["TEST_KEY"]
	if ok {
		t.Errorf("Expected key to be deleted")
	}
}

func TestPrefixIsNotAMatch(t *testing.T) {
	store := &ConfigStoreImpl{
		store: map[string]string{"SIZEX": "1"},
	}
	ctx := context.Background()
	if store.Has(ctx, "SIZE") {
		t.Error("SIZE must not match SIZEX")
	}
	if _, err := store.Get(ctx, "SIZE"); !errors.Is(err, ErrConfigKey) {
		t.Errorf("Expected key not found, got %v", err)
	}
}

func TestInvalidKey(t *testing.T) {
	store := &ConfigStoreImpl{
		store: make(map[string]string),
	}
	err := store.Set(context.Background(), "IN VALID", "x", true)
	if !errors.Is(err, ErrConfigKey) {
		t.Errorf("Expected invalid key error, got %v", err)
	}
}
