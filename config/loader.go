package config

import (
	"context"
	"strings"

	"github.com/spf13/viper"
)

const (
	ENV_SPLIT_CHAR = "_"
)

// Load builds a config from defaults, an optional config file and the environment, in rising priority.
// Environment variables are named <envPrefix>_<KEY> with the tree separator replaced by ENV_SPLIT_CHAR,
// e.g. BUFFER/SIZE is read from BOUNDEDBUF_BUFFER_SIZE. Only keys known from defaults or the file
// are looked up in the environment.
func Load(ctx context.Context, envPrefix string, defaults map[string]interface{}, file string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(CONFIG_TREE_SEPARATOR))
	for key, value := range flattenMap(defaults) {
		v.SetDefault(key, value)
	}

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(CONFIG_TREE_SEPARATOR, ENV_SPLIT_CHAR))
		v.AutomaticEnv()
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ErrLoadSource{source: file, nested: err}
		}
	}

	config, err := New(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range v.AllKeys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := config.Set(ctx, key, v.GetString(key), true); err != nil {
			return nil, &ErrLoadSource{source: "key " + key, nested: err}
		}
	}
	return config, nil
}
