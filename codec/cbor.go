package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding: the same payload always
// produces the same bytes, so payload digests are stable across saves.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any so CBOR payloads compare
// equal to the same data decoded from JSON or YAML.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR returns the codec for opaque objects serialized as CBOR.
func CBOR() Codec {
	return New("cbor", encMode.Marshal, unmarshalCBOR, CapabilityCBOR)
}

func unmarshalCBOR(data []byte) (any, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
