// Package config loads the two YAML/JSONC documents the harness core is
// handed at the edges: the server launch descriptor (pkg/mcp.ServerDescriptor)
// and a test suite file. Parsing, defaulting, and validation live here so
// pkg/mcp and pkg/testrunner never touch a file path.
package config

// FrameworkVersion is this build's own version, checked against a suite's
// optional minFrameworkVersion field.
const FrameworkVersion = "0.1.0"

// Suite is a loaded test file: a named group of test cases run in
// declaration order against one launched server.
type Suite struct {
	Description         string     `yaml:"description" json:"description"`
	MinFrameworkVersion string     `yaml:"minFrameworkVersion,omitempty" json:"minFrameworkVersion,omitempty"`
	Tests               []TestCase `yaml:"tests" json:"tests"`
}

// TestCase is one request/expectation pair within a suite.
type TestCase struct {
	It      string      `yaml:"it" json:"it"`
	Request RawRequest  `yaml:"request" json:"request"`
	Expect  Expectation `yaml:"expect" json:"expect"`
}

// RawRequest is the JSON-RPC message a test case sends. Params is left as
// a dynamic map so arbitrary method parameters round-trip without a
// per-method schema.
type RawRequest struct {
	JSONRPC string         `yaml:"jsonrpc,omitempty" json:"jsonrpc,omitempty"`
	ID      string         `yaml:"id,omitempty" json:"id,omitempty"`
	Method  string         `yaml:"method" json:"method"`
	Params  map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// Expectation holds the two pattern trees a test case may assert against.
// Response is evaluated against the full decoded JSON-RPC response
// object; Stderr is either the literal "toBeEmpty", a plain string
// (trimmed byte equality), or a match: pattern.
type Expectation struct {
	Response any `yaml:"response,omitempty" json:"response,omitempty"`
	Stderr   any `yaml:"stderr,omitempty" json:"stderr,omitempty"`
}

// toBeEmptyToken is the reserved Expectation.Stderr value requiring an
// empty (after trimming) stderr window.
const toBeEmptyToken = "toBeEmpty"
