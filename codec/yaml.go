package codec

import (
	"gopkg.in/yaml.v3"
)

// YAML returns the codec for YAML payloads. Mappings with string keys
// decode as map[string]any.
func YAML() Codec {
	return New("yaml", yaml.Marshal, unmarshalYAML)
}

func unmarshalYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
