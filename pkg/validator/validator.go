package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

func All(errors ...error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

type Validatable interface {
	Validate() error
}

func Each[T Validatable](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func Map[T any](items []T, f func(T, string) error, description string) error {
	for i, item := range items {
		if err := f(item, fmt.Sprintf("%s[%d]", description, i)); err != nil {
			return err
		}
	}
	return nil
}

// MapDict checks every entry of items in key order.
func MapDict[T any](items map[string]T, f func(string, T) error, description string) error {
	for _, key := range slices.Sorted(maps.Keys(items)) {
		if err := f(key, items[key]); err != nil {
			return fmt.Errorf("%s[%q]: %w", description, key, err)
		}
	}
	return nil
}

func NotEmpty(field, description string) error {
	if field == "" {
		return fmt.Errorf("%s must not be empty", description)
	}
	return nil
}

func NoDuplicates[T comparable](slice []T, description string) error {
	seen := make(map[T]struct{})
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%s contains duplicate value: %v", description, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

func MatchesAllowed[T comparable](field T, allowed []T, description string) error {
	if !slices.Contains(allowed, field) {
		return fmt.Errorf("%s must be one of %v, got %v", description, allowed, field)
	}
	return nil
}

// HasNoDirective rejects names that would be read as template markup.
func HasNoDirective(field string, description string) error {
	if strings.Contains(field, "%") {
		return fmt.Errorf("%s must not contain %%", description)
	}
	return nil
}

func Positive(n int, description string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be a positive integer, got %d", description, n)
	}
	return nil
}
