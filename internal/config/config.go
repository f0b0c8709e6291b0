// Package config loads snpeprep settings from flags, environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"snpeprep/internal/domain"
	"snpeprep/internal/errors"
	"snpeprep/internal/logging"
)

// Viper keys.
const (
	KeySDKRoot          = "snpe_root"
	KeyRuntime          = "runtime"
	KeyHTPSoC           = "htp_soc"
	KeyDryRun           = "dry_run"
	KeyIgnoreToolErrors = "ignore_tool_errors"
	KeyVerbose          = "verbose"
	KeyLogFormat        = "log_format"
	KeyPython           = "tools.python"
	KeyConverter        = "tools.converter"
	KeyQuantizer        = "tools.quantizer"
)

// SDKRootEnv is the variable the SDK env setup script exports.
const SDKRootEnv = "SNPE_ROOT"

// EnvPrefix prefixes every other environment override, e.g. SNPEPREP_TOOLS_PYTHON.
const EnvPrefix = "SNPEPREP"

// Settings is the fully resolved configuration for one run.
type Settings struct {
	SDKRoot          string
	Runtime          string
	RuntimeGiven     bool
	HTPSoC           string
	DryRun           bool
	IgnoreToolErrors bool
	Verbose          bool
	LogFormat        logging.Format
	Tools            domain.Toolchain
}

// Configure sets defaults and environment bindings on v.
func Configure(v *viper.Viper) error {
	tools := domain.DefaultToolchain()
	v.SetDefault(KeyPython, tools.Python)
	v.SetDefault(KeyConverter, tools.Converter)
	v.SetDefault(KeyQuantizer, tools.Quantizer)
	v.SetDefault(KeyLogFormat, string(logging.FormatAuto))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(KeySDKRoot, SDKRootEnv); err != nil {
		return fmt.Errorf("failed to bind %s: %w", SDKRootEnv, err)
	}
	return nil
}

// DefaultConfigPath returns $HOME/.config/snpeprep/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "snpeprep", "config.yaml"), nil
}

// ReadConfigFile loads path into v. An explicitly requested file must
// exist; the default file is optional.
func ReadConfigFile(v *viper.Viper, path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if !explicit {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return errors.NewConfigurationError("config", path,
			fmt.Sprintf("failed to read config file %s: %v", path, err), err)
	}
	return nil
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	settings := Settings{
		SDKRoot:          v.GetString(KeySDKRoot),
		Runtime:          v.GetString(KeyRuntime),
		RuntimeGiven:     v.IsSet(KeyRuntime),
		HTPSoC:           v.GetString(KeyHTPSoC),
		DryRun:           v.GetBool(KeyDryRun),
		IgnoreToolErrors: v.GetBool(KeyIgnoreToolErrors),
		Verbose:          v.GetBool(KeyVerbose),
		LogFormat:        logging.Format(v.GetString(KeyLogFormat)),
		Tools: domain.Toolchain{
			Python:    v.GetString(KeyPython),
			Converter: v.GetString(KeyConverter),
			Quantizer: v.GetString(KeyQuantizer),
		},
	}

	switch settings.LogFormat {
	case logging.FormatText, logging.FormatJSON, logging.FormatAuto:
	default:
		return Settings{}, errors.NewValidationError(KeyLogFormat, string(settings.LogFormat), "oneof",
			fmt.Sprintf("%s not a valid log format (text, json, auto)", settings.LogFormat))
	}

	for key, value := range map[string]string{
		KeyPython:    settings.Tools.Python,
		KeyConverter: settings.Tools.Converter,
		KeyQuantizer: settings.Tools.Quantizer,
	} {
		if strings.TrimSpace(value) == "" {
			return Settings{}, errors.NewConfigurationError(key, value,
				fmt.Sprintf("%s must name an executable", key), nil)
		}
	}

	return settings, nil
}
