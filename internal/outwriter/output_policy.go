package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	"gopkg.in/yaml.v3"
)

// WritePolicy prints the effective business policy. JSON output is honored;
// every other format prints YAML.
func WritePolicy(policy schema.Policy, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, policy)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writePolicyYAML(w, policy)
	}, "Wrote YAML")
}

// writePolicyYAML encodes the policy with two-space indentation.
func writePolicyYAML(w io.Writer, policy schema.Policy) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(policy); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
