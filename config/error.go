package config

import (
	"errors"
	"fmt"
)

var (
	ErrMergeFailed   = errors.New("merge failed")
	ErrConfigKey     = errors.New("config key error")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrCopyConfig    = errors.New("copy config error")
	ErrLoadingConfig = errors.New("loading config failed")
	ErrValueInvalid  = errors.New("value invalid")
)

type ErrKeyInvalid struct {
	key    string
	nested error
}

func (k *ErrKeyInvalid) Error() string {
	if k.nested != nil {
		return fmt.Sprintf("invalid key '%s': %s", k.key, k.nested.Error())
	}
	return fmt.Sprintf("invalid key '%s'", k.key)
}

func (k *ErrKeyInvalid) Unwrap() error {
	return ErrConfigKey
}

type KeyCharInvalid struct {
	key  string
	char rune
}

func (k *KeyCharInvalid) Error() string {
	return fmt.Sprintf("invalid character in key: %s (%s)", k.key, string(k.char))
}

func (k *KeyCharInvalid) Unwrap() error {
	return ErrValueInvalid
}

type ErrKeyInStore struct {
	key string
}

func (k *ErrKeyInStore) Error() string {
	return "key already in store: " + k.key
}

func (k *ErrKeyInStore) Unwrap() error {
	return ErrConfigKey
}

type ErrKeyNotFound struct {
	key string
}

func (k *ErrKeyNotFound) Error() string {
	return "key not in store: " + k.key
}

func (k *ErrKeyNotFound) Unwrap() error {
	return ErrConfigKey
}

type ErrKeyAmbiguous struct {
	key string
}

func (e *ErrKeyAmbiguous) Error() string {
	return "key is ambiguous: " + e.key
}

func (e *ErrKeyAmbiguous) Unwrap() error {
	return ErrConfigKey
}

type ErrFieldNotConfig struct {
	key string
}

func (f *ErrFieldNotConfig) Error() string {
	return "field is not a config: " + f.key
}

func (f *ErrFieldNotConfig) Unwrap() error {
	return ErrTypeMismatch
}

type ErrFieldNotInt struct {
	key string
}

func (f *ErrFieldNotInt) Error() string {
	return "field is not an int: " + f.key
}

func (f *ErrFieldNotInt) Unwrap() error {
	return ErrTypeMismatch
}

type ErrFieldNotBool struct {
	key string
}

func (f *ErrFieldNotBool) Error() string {
	return "field is not a bool: " + f.key
}

func (f *ErrFieldNotBool) Unwrap() error {
	return ErrTypeMismatch
}

type ErrFieldNotDuration struct {
	key string
}

func (f *ErrFieldNotDuration) Error() string {
	return "field is not a duration: " + f.key
}

func (f *ErrFieldNotDuration) Unwrap() error {
	return ErrTypeMismatch
}

type ErrMergeConfigReason struct {
	err error
}

func (e ErrMergeConfigReason) Error() string {
	return "error merging config: " + e.err.Error()
}

func (e ErrMergeConfigReason) Unwrap() error {
	return ErrMergeFailed
}

type ErrLoadSource struct {
	source string
	nested error
}

func (e *ErrLoadSource) Error() string {
	return "error loading config from " + e.source + ": " + e.nested.Error()
}

func (e *ErrLoadSource) Unwrap() []error {
	return []error{ErrLoadingConfig, e.nested}
}
