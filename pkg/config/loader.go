// Package config provides simple configuration loading
package config

import (
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/safeharbor-io/zipdeid/pkg/errors"
)

// Load loads a configuration from a YAML or JSON file, selected by
// extension. Values of the form ${VAR_NAME} are substituted from the
// environment before parsing.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller and validated
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := substituteEnvVars(string(data))

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		if err := gojson.Unmarshal([]byte(content), config); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse JSON config")
		}
	default:
		if err := yaml.Unmarshal([]byte(content), config); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML config")
		}
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
