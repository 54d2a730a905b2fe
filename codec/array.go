package codec

import (
	"errors"
	"fmt"
)

// Array is a dense float64 tensor in row-major order.
type Array struct {
	Shape []int     `cbor:"shape"`
	Data  []float64 `cbor:"data"`
}

// Len returns the number of elements implied by the shape.
func (a Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

func (a Array) validate() error {
	for _, d := range a.Shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in shape %v", a.Shape)
		}
	}
	if a.Len() != len(a.Data) {
		return fmt.Errorf("shape %v needs %d elements, have %d", a.Shape, a.Len(), len(a.Data))
	}
	return nil
}

// ArrayLayout tells whether an ArrayPayload holds named or positional arrays.
type ArrayLayout string

const (
	// Keyed payloads map names to arrays.
	Keyed ArrayLayout = "keyed"
	// Ordered payloads hold a sequence of arrays.
	Ordered ArrayLayout = "ordered"
)

// ArrayPayload is the value read and written by the array codec. Exactly
// one of Keyed or Ordered is meaningful, selected by Layout.
type ArrayPayload struct {
	Layout  ArrayLayout      `cbor:"layout"`
	Keyed   map[string]Array `cbor:"keyed,omitempty"`
	Ordered []Array          `cbor:"ordered,omitempty"`
}

// KeyedArrays builds a keyed ArrayPayload.
func KeyedArrays(arrays map[string]Array) ArrayPayload {
	return ArrayPayload{Layout: Keyed, Keyed: arrays}
}

// OrderedArrays builds an ordered ArrayPayload.
func OrderedArrays(arrays ...Array) ArrayPayload {
	return ArrayPayload{Layout: Ordered, Ordered: arrays}
}

func (p ArrayPayload) validate() error {
	var errs []error
	switch p.Layout {
	case Keyed:
		if p.Ordered != nil {
			return errors.New("keyed payload carries ordered arrays")
		}
		for name, a := range p.Keyed {
			if err := a.validate(); err != nil {
				errs = append(errs, fmt.Errorf("array %q: %w", name, err))
			}
		}
	case Ordered:
		if p.Keyed != nil {
			return errors.New("ordered payload carries keyed arrays")
		}
		for i, a := range p.Ordered {
			if err := a.validate(); err != nil {
				errs = append(errs, fmt.Errorf("array %d: %w", i, err))
			}
		}
	default:
		return fmt.Errorf("unknown array layout %q", p.Layout)
	}
	return errors.Join(errs...)
}

// Arrays returns the codec for tensor array payloads. Only ArrayPayload
// values (or pointers to them) can be saved; the layout is chosen by the
// caller and stored alongside the arrays.
func Arrays() Codec {
	return New("arr", marshalArrays, unmarshalArrays, CapabilityCBOR)
}

func marshalArrays(v any) ([]byte, error) {
	var p ArrayPayload
	switch t := v.(type) {
	case ArrayPayload:
		p = t
	case *ArrayPayload:
		if t == nil {
			return nil, fmt.Errorf("%w: nil array payload", ErrUnsupported)
		}
		p = *t
	default:
		return nil, fmt.Errorf("%w: array codec cannot save %T", ErrUnsupported, v)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return encMode.Marshal(p)
}

func unmarshalArrays(data []byte) (any, error) {
	var p ArrayPayload
	if err := decMode.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}
