package config

import (
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
)

// EnvPrefix prefixes every settings environment variable
const EnvPrefix = "KSMM_"

// envKey maps KSMM_BUILD_OUTPUT_DIR to build.output_dir. Only the first
// underscore separates section from key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// Load reads the layered settings. settingsFile may be empty or point at
// a file that does not exist.
func Load(settingsFile string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	// 2. Project settings
	if settingsFile != "" {
		if _, err := os.Stat(settingsFile); err == nil {
			if err := k.Load(file.Provider(settingsFile), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load settings from %s", settingsFile).
					WithDetail("path", settingsFile)
			}
			logger.Debug().Str("path", settingsFile).Msg("Loaded project settings")
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat settings file %s", settingsFile)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment settings")
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode settings")
	}

	return &cfg, nil
}
