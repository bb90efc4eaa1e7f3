package config

import (
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// Render encodes cfg as TOML, as shown by `ksmm config`
func Render(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode settings")
	}
	return string(data), nil
}
