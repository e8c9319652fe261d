package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// yamlConfigLoader resolves flags from a YAML document. Keys may use the flag
// name (api-url) or its snake_case form (api_url); nested maps are addressed
// by command name, e.g. serve: {addr: ":9000"}.
func yamlConfigLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("loandash: parse config: %w", err)
	}
	return kong.ResolverFunc(func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if setInEnv(flag.Envs) {
			return nil, nil
		}
		if parent != nil && parent.Command != nil {
			if nested, ok := lookup(values, parent.Command.Name).(map[string]any); ok {
				if v := lookup(nested, flag.Name); v != nil {
					return v, nil
				}
			}
		}
		return lookup(values, flag.Name), nil
	}), nil
}

func setInEnv(keys []string) bool {
	for _, key := range keys {
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}

func lookup(values map[string]any, name string) any {
	if v, ok := values[name]; ok {
		return v
	}
	if v, ok := values[strings.ReplaceAll(name, "-", "_")]; ok {
		return v
	}
	return nil
}
