package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/banksim/internal/bankdb"
)

// LoadStateFile reads a raw banking configuration from a YAML or JSON
// file. An empty file yields nil, which loads as the defaults.
func LoadStateFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return raw, nil
}

// openState loads the container for a command. An empty path yields the
// defaults. Invalid configuration falls back to the defaults with a
// warning, like the environment does at startup.
func openState(path string, logger *slog.Logger, f *OutputFormatter) (*bankdb.DB, error) {
	if path == "" {
		return bankdb.New(), nil
	}

	raw, err := LoadStateFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("state file not found: %s", path), nil)
		}
		return nil, f.Fail(ExitCommandError, ErrCodeParse, "failed to load state file", err)
	}
	return bankdb.Load(raw, logger), nil
}
