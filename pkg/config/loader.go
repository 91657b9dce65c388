package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/mcptest/mcptest/pkg/mcp"
)

// LoadDescriptor reads a server launch descriptor. YAML (.yaml/.yml) is
// the primary format; .json/.jsonc go through hujson first so a
// hand-edited descriptor can carry comments and trailing commas without
// needing to be strict JSON.
func LoadDescriptor(path string) (*mcp.ServerDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor file: %w", err)
	}

	var desc mcp.ServerDescriptor
	if err := unmarshalByExtension(path, data, &desc); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}

	if err := ValidateDescriptor(&desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// LoadSuite reads a test suite file, expands environment variables in
// request string leaves, checks minFrameworkVersion compatibility, and
// validates the result.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var suite Suite
	if err := unmarshalByExtension(path, data, &suite); err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}

	expandSuiteEnv(&suite)

	if err := checkFrameworkVersion(&suite); err != nil {
		return nil, err
	}

	if _, err := ValidateSuite(&suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

func unmarshalByExtension(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".json", ".jsonc":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("standardizing JSONC: %w", err)
		}
		return json.Unmarshal(standardized, v)
	default:
		return fmt.Errorf("unrecognized file extension %q (want .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}
}

// checkFrameworkVersion fails fast when a suite declares a
// minFrameworkVersion newer than this build, instead of letting the
// suite run into unrelated pattern mismatches caused by a missing
// operator or field.
func checkFrameworkVersion(s *Suite) error {
	if s.MinFrameworkVersion == "" {
		return nil
	}
	required, err := semver.NewVersion(s.MinFrameworkVersion)
	if err != nil {
		return fmt.Errorf("invalid minFrameworkVersion %q: %w", s.MinFrameworkVersion, err)
	}
	running, err := semver.NewVersion(FrameworkVersion)
	if err != nil {
		return fmt.Errorf("invalid build FrameworkVersion %q: %w", FrameworkVersion, err)
	}
	if running.LessThan(required) {
		return fmt.Errorf("suite requires framework version >= %s, running %s", required, running)
	}
	return nil
}

// expandSuiteEnv expands $VAR / ${VAR} references in every string leaf of
// each test case's request (method, id, and params values), matching how
// the teacher expands env vars across its config tree before validation.
func expandSuiteEnv(s *Suite) {
	for i := range s.Tests {
		s.Tests[i].Request.ID = os.ExpandEnv(s.Tests[i].Request.ID)
		s.Tests[i].Request.Method = os.ExpandEnv(s.Tests[i].Request.Method)
		for k, v := range s.Tests[i].Request.Params {
			s.Tests[i].Request.Params[k] = expandEnvValue(v)
		}
	}
}

func expandEnvValue(v any) any {
	switch t := v.(type) {
	case string:
		return os.ExpandEnv(t)
	case map[string]any:
		for k, sub := range t {
			t[k] = expandEnvValue(sub)
		}
		return t
	case []any:
		for i, sub := range t {
			t[i] = expandEnvValue(sub)
		}
		return t
	default:
		return v
	}
}
