package config

import (
	"context"
	"strings"
	"sync"
)

type ConfigStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context, key string) map[string]string
	Set(ctx context.Context, key string, value string, force bool) error
	Has(ctx context.Context, key string) bool
	Keys(ctx context.Context) []string
}

type ConfigStoreNew func(context.Context) (ConfigStore, error)

var DefaultConfigStore ConfigStoreNew = NewConfigStore

func NewConfigStore(ctx context.Context) (ConfigStore, error) {
	return &ConfigStoreImpl{
		store: make(map[string]string),
	}, nil
}

type ConfigStoreImpl struct {
	mu    sync.RWMutex
	store map[string]string
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// matchesKey reports whether stored is key itself or lives below it in the tree.
func matchesKey(stored string, key string) bool {
	if key == "" {
		return true
	}
	return stored == key || strings.HasPrefix(stored, key+CONFIG_TREE_SEPARATOR)
}

func (c *ConfigStoreImpl) Has(ctx context.Context, key string) bool {
	key = normalizeKey(key)
	if err := IsValidKey(key); err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k := range c.store {
		if err := ctx.Err(); err != nil {
			return false
		}
		if matchesKey(k, key) {
			return true
		}
	}
	return false
}

func (c *ConfigStoreImpl) Get(ctx context.Context, key string) (string, error) {
	key = normalizeKey(key)
	if err := IsValidKey(key); err != nil {
		return "", err
	}
	matchedValues := c.GetAll(ctx, key)
	if matchedValues == nil {
		return "", &ErrKeyNotFound{key: key}
	}
	value, ok := matchedValues[""]
	if !ok {
		return "", &ErrKeyAmbiguous{key: key}
	}
	return value, nil
}

// GetAll returns all values stored at or below key, indexed by the key suffix
// relative to key. A direct value is indexed by an empty string.
// If nothing matches, nil is returned.
func (c *ConfigStoreImpl) GetAll(ctx context.Context, key string) map[string]string {
	key = normalizeKey(key)
	values := make(map[string]string)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, v := range c.store {
		if err := ctx.Err(); err != nil {
			// context cancelled, return what we have
			return values
		}
		if !matchesKey(k, key) {
			continue
		}
		trimKey := strings.TrimPrefix(strings.TrimPrefix(k, key), CONFIG_TREE_SEPARATOR)
		values[trimKey] = v
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// Set stores value under key. An empty value deletes the key.
func (c *ConfigStoreImpl) Set(ctx context.Context, key string, value string, force bool) error {
	key = normalizeKey(key)
	if err := IsValidKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store[key]; ok && !force && value != "" {
		return &ErrKeyInStore{key: key}
	}
	if value == "" {
		delete(c.store, key)
	} else {
		c.store[key] = value
	}
	return nil
}

func (c *ConfigStoreImpl) Keys(ctx context.Context) []string {
	keys := []string{}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key := range c.store {
		if err := ctx.Err(); err != nil {
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}
