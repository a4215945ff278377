// Package config loads and validates the YAML definition of a workflow
// module: its graph topology, schema, provider wiring, and checkpointer
// selection, grounded on ahrav-go-gavel's internal/application config
// loader.
package config

// Module is the root document a workflow file deserializes into.
type Module struct {
	Version  string         `yaml:"version" validate:"required"`
	Name     string         `yaml:"name" validate:"required,min=1,max=255"`
	Schema   []FieldConfig  `yaml:"schema" validate:"required,min=1,dive"`
	Nodes    []NodeConfig   `yaml:"nodes" validate:"required,min=1,dive"`
	Edges    []EdgeConfig   `yaml:"edges" validate:"dive"`
	Entry    string         `yaml:"entry" validate:"required"`
	Checkpointer CheckpointerConfig `yaml:"checkpointer" validate:"required"`
}

// FieldConfig declares one schema field and its reducer.
type FieldConfig struct {
	Name    string `yaml:"name" validate:"required,min=1"`
	Reducer string `yaml:"reducer" validate:"required,oneof=last_value append"`
}

// NodeConfig describes one graph node. Agent nodes additionally specify a
// Role and Provider; plain nodes are wired by the host program via
// WorkflowLoader, since arbitrary Go functions cannot live in YAML.
type NodeConfig struct {
	Name     string `yaml:"name" validate:"required,min=1"`
	Kind     string `yaml:"kind" validate:"required,oneof=user agent prep"`
	Role     string `yaml:"role" validate:"omitempty,min=1"`
	Provider string `yaml:"provider" validate:"omitempty,oneof=chat_endpoint cli_subprocess"`
	Task     string `yaml:"task"`
}

// EdgeConfig is an unconditional edge, or — when Router is set — a
// conditional edge whose label→target map is resolved by the host program
// (router functions, like node functions, are Go code, not YAML).
type EdgeConfig struct {
	From   string `yaml:"from" validate:"required"`
	To     string `yaml:"to" validate:"required_without=Router"`
	Router string `yaml:"router" validate:"required_without=To"`
}

// CheckpointerConfig selects and parameterizes a Checkpointer back-end.
type CheckpointerConfig struct {
	Kind string `yaml:"kind" validate:"required,oneof=memory kv sql resilient"`
	// DSN is the bbolt file path (kind=kv) or database/sql DSN (kind=sql).
	DSN string `yaml:"dsn" validate:"omitempty"`
	// Driver selects the database/sql driver name when kind=sql.
	Driver string `yaml:"driver" validate:"omitempty,oneof=mysql sqlite"`
	// FallbackDSN is the bbolt path a resilient wrapper degrades into.
	FallbackDSN string `yaml:"fallback_dsn" validate:"omitempty"`
}

// RuntimeConfig holds optional scheduler limits and a log level. Module has
// no field for it, so Load and Parse never populate it from a workflow file.
type RuntimeConfig struct {
	MaxSteps       int    `yaml:"max_steps" validate:"omitempty,min=1"`
	NodeTimeoutSec int    `yaml:"node_timeout_seconds" validate:"omitempty,min=1"`
	LogLevel       string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}
