package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document is a mapping from flag names to values. Nested mappings are
// flattened by joining keys with hyphens, so these are equivalent:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may be used in place of hyphens (log_level). Sequences set
// repeatable flags:
//
//	define:
//	  - greeting='hello'
//	  - answer=6*7
//
// Command-line flags override config file values. A file that cannot be
// decoded is ignored with a warning.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration file",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// flatten adds the entries of m to r, prefixing their keys with prefix.
func (r config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := value.(map[string]any); ok {
			r.flatten(name, sub)

			continue
		}

		r[name] = flagValue(value)
	}
}

// flagValue converts a decoded YAML value to the form kong parses: numbers
// become strings and sequences become lists of them.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = flagValue(item)
		}

		return items
	case nil, bool, string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Validate implements [kong.Resolver]. Keys that name no flag are reported
// as warnings rather than errors, so that a config file can be shared
// between versions.
func (r config) Validate(app *kong.Application) error {
	known := map[string]bool{}

	var visit func(n *kong.Node)

	visit = func(n *kong.Node) {
		for _, flag := range n.Flags {
			known[flag.Name] = true
		}

		for _, child := range n.Children {
			visit(child)
		}
	}

	visit(app.Node)

	for name := range r {
		if !known[name] {
			log.Warn("unknown configuration key", slog.String("key", name))
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found; let kong use the default.
	return nil, nil
}
