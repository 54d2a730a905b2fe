package codec

import "encoding/json"

// JSON returns the codec for plain JSON payloads. Numbers decode as
// float64, objects as map[string]any and arrays as []any.
func JSON() Codec {
	return New("json", marshalJSON, unmarshalJSON)
}

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func unmarshalJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
