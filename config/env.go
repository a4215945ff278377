package config

import (
	"os"
	"regexp"
)

// envPattern matches "${NAME}" and "${NAME:default}".
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:([^}]*))?\}`)

// expandEnv substitutes ${NAME} and ${NAME:default} references in raw
// against the process environment before YAML parsing, so secrets and
// per-deployment values never need to live in the workflow file itself.
// A variable that is unset or set to the empty string takes the default;
// with no default it expands to "".
func expandEnv(raw []byte) []byte {
	return envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		name := string(groups[1])
		def := string(groups[3])
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return []byte(v)
		}
		return []byte(def)
	})
}
