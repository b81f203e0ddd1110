// Package hydrate converts YAML configuration payloads into strongly typed
// structs, with hook points before and after decoding.
package hydrate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Context carries identifiers tied to a configuration payload.
type Context struct {
	Name   string
	Source string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated struct after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default YAML decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts configuration payloads into strongly typed structs.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	custom    CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithCustomDecoder replaces the default decoding step.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

// NewDecoder constructs a Decoder with the supplied options.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode parses payload, runs the hook chain, and returns the hydrated value.
func (d *Decoder[T]) Decode(ctx Context, payload []byte) (T, error) {
	var zero T

	raw := map[string]any{}
	if len(payload) > 0 {
		if err := yaml.Unmarshal(payload, &raw); err != nil {
			return zero, fmt.Errorf("hydrate: parse %q: %w", ctx.Name, err)
		}
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, raw)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre hook %q: %w", ctx.Name, err)
		}
		if next != nil {
			raw = next
		}
	}

	var value T
	if d.custom != nil {
		custom, err := d.custom(ctx, raw)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decode %q: %w", ctx.Name, err)
		}
		value = custom
	} else {
		encoded, err := yaml.Marshal(raw)
		if err != nil {
			return zero, fmt.Errorf("hydrate: encode %q: %w", ctx.Name, err)
		}
		if err := yaml.Unmarshal(encoded, &value); err != nil {
			return zero, fmt.Errorf("hydrate: decode %q: %w", ctx.Name, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &value); err != nil {
			return zero, fmt.Errorf("hydrate: post hook %q: %w", ctx.Name, err)
		}
	}

	return value, nil
}
