package fetch

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML converts a YAML resource body into a generic value.
func DecodeYAML(body []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode YAML body: %w", err)
	}
	return v, nil
}
