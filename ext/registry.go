package ext

import (
	"fmt"

	"github.com/jpakfmt/jpak/errs"
	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/value"
)

// EncodeProbe inspects v and, if it recognizes the shape, returns the raw
// bytes to store under its tag. ok is false for any value the probe does
// not handle, letting the registry fall through to the next one.
type EncodeProbe func(v value.Value) (payload []byte, ok bool)

// DecodeHandler turns a tag's raw payload back into a Value.
type DecodeHandler func(tag byte, payload []byte) (value.Value, error)

type registration struct {
	tag     byte
	probe   EncodeProbe
	decoder DecodeHandler
}

// Registry holds caller-registered handlers for the user-extension tag
// range (0x00-0xCF). Registration order is encode-probe priority: the
// first probe that reports ok wins.
type Registry struct {
	regs []registration
	tags map[byte]bool
}

// NewRegistry creates an empty user-extension registry.
func NewRegistry() *Registry {
	return &Registry{tags: make(map[byte]bool)}
}

// Register adds a handler pair for tag. It returns an error if tag is
// outside the user range or already registered.
func (r *Registry) Register(tag byte, probe EncodeProbe, decoder DecodeHandler) error {
	if !format.IsValidUserExtTag(tag) {
		return fmt.Errorf("ext: %w: 0x%02X", errs.ErrInvalidExtensionTag, tag)
	}
	if r.tags[tag] {
		return fmt.Errorf("ext: %w: 0x%02X", errs.ErrExtensionTagConflict, tag)
	}

	r.tags[tag] = true
	r.regs = append(r.regs, registration{tag: tag, probe: probe, decoder: decoder})

	return nil
}

// Probe runs every registered probe in registration order and returns the
// first match.
func (r *Registry) Probe(v value.Value) (tag byte, payload []byte, ok bool) {
	for _, reg := range r.regs {
		if payload, ok := reg.probe(v); ok {
			return reg.tag, payload, true
		}
	}

	return 0, nil, false
}

// Decode dispatches payload to the handler registered for tag.
func (r *Registry) Decode(tag byte, payload []byte) (value.Value, error) {
	for _, reg := range r.regs {
		if reg.tag == tag {
			return reg.decoder(tag, payload)
		}
	}

	return value.Value{}, fmt.Errorf("ext: %w: 0x%02X", errs.ErrUnknownTag, tag)
}
