package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/websnip/internal/model"
)

// configKeys lists every dotted key of model.Config, derived from its
// YAML form so new fields are picked up without a separate table
func configKeys() []string {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil
	}

	var keys []string
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, v := range node {
			if child, ok := v.(map[string]any); ok {
				walk(prefix+k+".", child)
				continue
			}
			keys = append(keys, prefix+k)
		}
	}
	walk("", tree)

	// omitempty fields are missing from the defaults
	keys = append(keys, "annotation.apiKey")
	sort.Strings(keys)
	return keys
}

// bindEnv binds WEBSNIP_<SECTION>_<KEY> for every key so Unmarshal sees
// environment values
func bindEnv() {
	viper.SetEnvPrefix("WEBSNIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range configKeys() {
		_ = viper.BindEnv(key)
	}
	_ = viper.BindEnv("annotation.apiKey", "WEBSNIP_ANNOTATION_APIKEY", "OPENAI_API_KEY")
}

// applySets feeds --set key=value pairs into viper
func applySets(pairs []string) error {
	known := make(map[string]bool)
	for _, k := range configKeys() {
		known[strings.ToLower(k)] = true
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		if !known[strings.ToLower(key)] {
			return fmt.Errorf("invalid --set %q: unknown key %s", pair, key)
		}
		viper.Set(key, value)
	}
	return nil
}

// loadConfig merges defaults, config file, environment and --set flags
func loadConfig() (*model.Config, error) {
	if err := applySets(setValues); err != nil {
		return nil, err
	}

	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	cfg.CleanOverrides = make(map[string]bool)
	for _, key := range model.CleanKeys {
		if viper.IsSet("clean." + key) {
			cfg.CleanOverrides[key] = viper.GetBool("clean." + key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
