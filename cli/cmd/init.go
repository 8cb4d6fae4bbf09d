package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/pkg"
	"github.com/ardnew/interp/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init writes the current global flag values to the configuration file.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := kongVar(ctx, ConfigIdentifier)
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		i.flagValues(ktx),
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(pkg.ErrYAMLMarshal.Wrap(err))
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// flagValues returns the set global flags in declaration order.
func (i *Init) flagValues(ktx *kong.Context) yaml.MapSlice {
	prefixIgnore := []string{"help", "version", profile.Tag}

	var entries yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := configValue(ktx.FlagValue(flag)); val != nil {
			entries = append(entries, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return entries
}

// configValue converts a flag value to a plain YAML value, or nil if the
// flag is unset or empty.
func configValue(val any) any {
	if val == nil {
		return nil
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()

	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()

	case reflect.Float32, reflect.Float64:
		return rv.Float()

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

		items := make([]any, 0, rv.Len())
		for j := range rv.Len() {
			if item := configValue(rv.Index(j).Interface()); item != nil {
				items = append(items, item)
			}
		}

		return items

	default:
		return fmt.Sprint(val)
	}
}
