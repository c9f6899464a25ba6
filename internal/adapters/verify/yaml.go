package verify

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// YAML checks that a rewrite did not break a YAML document. Inputs that are
// not YAML to begin with are accepted as they are.
func YAML(input, output []byte) error {
	var in yaml.Node
	if err := yaml.Unmarshal(input, &in); err != nil {
		return nil
	}
	var out yaml.Node
	if err := yaml.Unmarshal(output, &out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOutput, err)
	}
	return nil
}
