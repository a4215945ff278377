// Package definition loads and validates declarative worker definitions,
// grounded on ahrav-go-gavel's struct-tag validation pattern
// (internal/application/config.go) and the specification's four-layer
// validation pipeline (§4.I): safe parse, structural, pattern scan,
// semantic.
package definition

// TrustLevel is the worker's declared privilege tier.
type TrustLevel string

const (
	Trusted    TrustLevel = "trusted"
	Sandboxed  TrustLevel = "sandboxed"
	Restricted TrustLevel = "restricted"
)

// Definition is the fully-parsed, purely declarative worker record. It must
// be free of executable code — see patterns.go for the forbidden-construct
// scan enforcing that.
type Definition struct {
	WorkerID   string           `yaml:"worker_id" validate:"required,alphanum_underscore"`
	Identity   Identity         `yaml:"identity" validate:"required"`
	Constraints []ConstraintSpec `yaml:"constraints" validate:"dive"`
	Runtime    Runtime          `yaml:"runtime" validate:"required"`
	TrustLevel TrustLevel       `yaml:"trust_level" validate:"required,oneof=trusted sandboxed restricted"`
	Audit      Audit            `yaml:"audit"`
}

// Identity carries the worker's persona and onboarding script, both plain
// strings — never a template engine or host-code hook.
type Identity struct {
	Name            string   `yaml:"name" validate:"required"`
	SystemPrompt    string   `yaml:"system_prompt" validate:"required"`
	OnboardingSteps []string `yaml:"onboarding_steps"`
}

// ConstraintSpec is the on-disk form of a worker.Constraint. The semantic
// validation layer confirms witness_id exists in the witness registry;
// worker.Instance.Constraints converts it into a worker.Constraint.
type ConstraintSpec struct {
	ConstraintID string `yaml:"constraint_id" validate:"required"`
	Witness      string `yaml:"witness" validate:"required"`
	Value        any    `yaml:"value"`
	Feedback     string `yaml:"feedback" validate:"required,oneof=alert_dashboard log email"`
}

// Runtime declares the worker's isolation shape: container image (if any),
// workspace path template, tool allow-list, and whether the isolation
// boundary persists across void/execute calls within a journey.
type Runtime struct {
	Container          string   `yaml:"container"`
	WorkspaceTemplate  string   `yaml:"workspace_template" validate:"required"`
	Tools              []string `yaml:"tools"`
	SessionPersistence bool     `yaml:"session_persistence"`
}

// Audit controls whether and how the worker's actions are logged.
type Audit struct {
	LogAllActions    bool   `yaml:"log_all_actions"`
	ExecutionChannel string `yaml:"execution_channel"`
	RetentionDays    int    `yaml:"retention_days" validate:"omitempty,min=0"`
}
