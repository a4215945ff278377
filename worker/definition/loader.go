package definition

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/langgraph-go/runtime/errs"
)

// unsafeTagPattern flags YAML custom-constructor tags (e.g. "!!python/object",
// "!!ruby/object") that some parsers materialise into arbitrary host
// objects. yaml.v3 itself never executes these, but a definition carrying
// one is still rejected outright: it signals the file was authored for a
// different, unsafe loader and should not be trusted here either.
var unsafeTagPattern = regexp.MustCompile(`!!\s*[a-z]+/(object|new|apply)`)

// Load reads, safely parses, and fully validates a worker definition file.
func Load(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDefinitionMalformed, err)
	}
	return Parse(raw)
}

// Parse runs all four validation layers over raw and returns the resulting
// Definition, per spec §4.I.
func Parse(raw []byte) (*Definition, error) {
	if loc := unsafeTagPattern.FindIndex(raw); loc != nil {
		return nil, fmt.Errorf("%w: unsafe YAML constructor tag", errs.ErrDefinitionImpure)
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDefinitionMalformed, err)
	}

	if err := validateStructural(&def); err != nil {
		return nil, err
	}
	if err := validatePatterns(&def); err != nil {
		return nil, err
	}
	if err := validateSemantic(&def, nil); err != nil {
		return nil, err
	}
	return &def, nil
}
