package definition

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/langgraph-go/runtime/errs"
)

var workerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validate runs the struct-tag checks declared on Definition and its
// sub-structs (required/oneof/dive), the same go-playground/validator
// pattern the config package uses. "alphanum_underscore" is registered
// because worker_id allows underscores, which validator's builtin
// "alphanum" tag rejects.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
		return workerIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// WitnessResolver reports whether a witness id is registered. It is
// satisfied by *witness.Registry without worker/definition needing to
// import worker/witness.
type WitnessResolver interface {
	Has(witnessID string) bool
}

// validateStructural is layer 2: struct-tag required/oneof/dive checks via
// go-playground/validator, plus the one cross-field check (per-constraint
// id/witness pairing) a single field tag can't express.
func validateStructural(def *Definition) error {
	if err := validate.Struct(def); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDefinitionMalformed, err)
	}
	for _, c := range def.Constraints {
		if c.ConstraintID == "" || c.Witness == "" {
			return fmt.Errorf("%w: constraint missing constraint_id or witness", errs.ErrDefinitionMalformed)
		}
	}
	return nil
}

// validatePatterns is layer 3: scan every string-valued field for
// host-code markers.
func validatePatterns(def *Definition) error {
	fields := []string{
		def.WorkerID, def.Identity.Name, def.Identity.SystemPrompt,
		def.Runtime.Container, def.Runtime.WorkspaceTemplate,
	}
	fields = append(fields, def.Identity.OnboardingSteps...)
	fields = append(fields, def.Runtime.Tools...)
	for _, f := range fields {
		if hit := scanForbidden(f); hit != "" {
			return fmt.Errorf("%w: forbidden pattern %s", errs.ErrDefinitionImpure, hit)
		}
	}
	return nil
}

// validateSemantic is layer 4: witness_id resolution, trust_level and
// worker_id format. resolver may be nil, in which case witness resolution
// is skipped (useful for structural-only pre-checks before the witness
// registry is available).
func validateSemantic(def *Definition, resolver WitnessResolver) error {
	if !workerIDPattern.MatchString(def.WorkerID) {
		return fmt.Errorf("%w: worker_id must match [A-Za-z0-9_]+", errs.ErrDefinitionMalformed)
	}
	switch def.TrustLevel {
	case Trusted, Sandboxed, Restricted:
	default:
		return fmt.Errorf("%w: unknown trust_level %q", errs.ErrDefinitionMalformed, def.TrustLevel)
	}
	if resolver != nil {
		for _, c := range def.Constraints {
			if !resolver.Has(c.Witness) {
				return fmt.Errorf("%w: unknown witness_id %q", errs.ErrDefinitionMalformed, c.Witness)
			}
		}
	}
	return nil
}

// ValidateWithWitnesses re-runs the semantic layer against a concrete
// witness resolver, for callers (the factory) that load a definition
// before the witness registry is wired and want to confirm witness ids
// resolve before spawning.
func ValidateWithWitnesses(def *Definition, resolver WitnessResolver) error {
	return validateSemantic(def, resolver)
}
