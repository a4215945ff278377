package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/langgraph-go/runtime/errs"
)

var validate = validator.New()

// Load reads a workflow definition from path, expands environment
// references, parses it as YAML, and structurally validates it.
func Load(path string) (*Module, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrModuleLoad, err)
	}
	return Parse(raw)
}

// Parse expands env references in raw and decodes+validates it as a Module.
func Parse(raw []byte) (*Module, error) {
	expanded := expandEnv(raw)

	var mod Module
	if err := yaml.Unmarshal(expanded, &mod); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDefinitionMalformed, err)
	}
	if err := validate.Struct(&mod); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDefinitionMalformed, err)
	}
	if err := crossCheck(&mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

// crossCheck validates references the struct tags can't express: entry
// must name a real node, and edges must reference declared nodes.
func crossCheck(mod *Module) error {
	nodes := make(map[string]bool, len(mod.Nodes))
	for _, n := range mod.Nodes {
		nodes[n.Name] = true
	}
	if !nodes[mod.Entry] {
		return fmt.Errorf("%w: entry %q is not a declared node", errs.ErrDefinitionMalformed, mod.Entry)
	}
	for _, e := range mod.Edges {
		if !nodes[e.From] {
			return fmt.Errorf("%w: edge references unknown node %q", errs.ErrDefinitionMalformed, e.From)
		}
		if e.To != "" && e.To != "END" && !nodes[e.To] {
			return fmt.Errorf("%w: edge references unknown node %q", errs.ErrDefinitionMalformed, e.To)
		}
	}
	return nil
}
