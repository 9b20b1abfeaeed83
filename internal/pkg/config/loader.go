// Package config reads settings from the environment. The default Loader is
// fail-open: a value that is missing or invalid falls back to its default and
// the fallback is reported as a warning. A strict Loader also records every
// invalid value so the caller can refuse to start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Getenv looks up a configuration variable. os.Getenv satisfies it.
type Getenv func(string) string

// LoadResult is the outcome of loading one value.
//
// Fields:
//   - Value: the loaded value, or the default when FallbackApplied is true
//   - Warnings: one message per fallback applied
//   - FallbackApplied: true if the default replaced an invalid value
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// Loader reads variables through a Getenv function.
type Loader struct {
	getenv Getenv
	strict bool
	errs   []error
}

// NewLoader creates a fail-open Loader. A nil getenv reads the process environment.
func NewLoader(getenv Getenv) *Loader {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Loader{getenv: getenv}
}

// NewStrictLoader creates a Loader that records each invalid value as an
// error. Values still fall back to their defaults so loading can continue;
// Err reports everything found.
func NewStrictLoader(getenv Getenv) *Loader {
	l := NewLoader(getenv)
	l.strict = true
	return l
}

// Fail records a problem found by the caller's own checks. It is a no-op on
// a fail-open Loader.
func (l *Loader) Fail(format string, args ...any) {
	if l.strict {
		l.errs = append(l.errs, fmt.Errorf(format, args...))
	}
}

// Err joins every error recorded so far, or returns nil.
func (l *Loader) Err() error {
	return errors.Join(l.errs...)
}

func (l *Loader) lookup(key string) string {
	return strings.TrimSpace(l.getenv(key))
}

// String returns the value of key, or defaultValue when unset. No validation.
func (l *Loader) String(key, defaultValue string) string {
	if v := l.lookup(key); v != "" {
		return v
	}
	return defaultValue
}

// WithFallback loads a string and validates it, falling back to defaultValue
// when validation fails.
//
//	result := loader.WithFallback("CRON_SCHEDULE", "0 6 * * *", ValidateCronSchedule)
//	if result.FallbackApplied { ... }
func (l *Loader) WithFallback(key, defaultValue string, validator func(string) error) LoadResult[string] {
	raw := l.lookup(key)
	if raw == "" {
		return LoadResult[string]{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(raw); err != nil {
			return fallback(l, key, raw, defaultValue, err)
		}
	}
	return LoadResult[string]{Value: raw}
}

// Duration loads a time.Duration in Go syntax ("90s", "1h30m").
func (l *Loader) Duration(key string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	raw := l.lookup(key)
	if raw == "" {
		return LoadResult[time.Duration]{Value: defaultValue}
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(l, key, raw, defaultValue, errors.New("invalid duration"))
	}
	if validator != nil {
		if err := validator(d); err != nil {
			return fallback(l, key, raw, defaultValue, err)
		}
	}
	return LoadResult[time.Duration]{Value: d}
}

// Int loads a base-10 integer.
func (l *Loader) Int(key string, defaultValue int, validator func(int) error) LoadResult[int] {
	raw := l.lookup(key)
	if raw == "" {
		return LoadResult[int]{Value: defaultValue}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(l, key, raw, defaultValue, errors.New("invalid integer"))
	}
	if validator != nil {
		if err := validator(n); err != nil {
			return fallback(l, key, raw, defaultValue, err)
		}
	}
	return LoadResult[int]{Value: n}
}

// Bool loads a boolean accepted by strconv.ParseBool.
func (l *Loader) Bool(key string, defaultValue bool) LoadResult[bool] {
	raw := l.lookup(key)
	if raw == "" {
		return LoadResult[bool]{Value: defaultValue}
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(l, key, raw, defaultValue, errors.New("invalid boolean"))
	}
	return LoadResult[bool]{Value: b}
}

// Float loads a floating-point number.
func (l *Loader) Float(key string, defaultValue float64, validator func(float64) error) LoadResult[float64] {
	raw := l.lookup(key)
	if raw == "" {
		return LoadResult[float64]{Value: defaultValue}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback(l, key, raw, defaultValue, errors.New("invalid number"))
	}
	if validator != nil {
		if err := validator(f); err != nil {
			return fallback(l, key, raw, defaultValue, err)
		}
	}
	return LoadResult[float64]{Value: f}
}

func fallback[T any](l *Loader, key, raw string, defaultValue T, err error) LoadResult[T] {
	if l.strict {
		l.errs = append(l.errs, fmt.Errorf("%s: %v %q", key, err, raw))
	}
	return LoadResult[T]{
		Value:           defaultValue,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", key, raw, err, defaultValue)},
		FallbackApplied: true,
	}
}
