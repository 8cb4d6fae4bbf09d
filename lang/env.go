package lang

// This file defines the builtin objects that the command-line tool and the
// HTTP server add to every variable context: env, sys and path.

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ardnew/mung"
)

// Builtins returns the builtin objects for the given environment, a list of
// "KEY=VALUE" entries as returned by [os.Environ]. A nil environ uses the
// process environment.
func Builtins(environ []string) Vars {
	if environ == nil {
		environ = os.Environ()
	}

	env := environMap(environ)

	return Vars{
		"env":  envObject(env),
		"sys":  sysObject(),
		"path": pathObject(env),
	}
}

// environMap converts "KEY=VALUE" entries to a map. Later entries win.
func environMap(environ []string) map[string]any {
	m := make(map[string]any, len(environ))

	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
			m[key] = value
		}
	}

	return m
}

func envObject(env map[string]any) Members {
	return Members{
		Name:       "env",
		Properties: env,
		Methods: map[string]Func{
			"get": func(args ...any) (any, error) {
				s, err := stringArgs("env.get", args, 1, 2)
				if err != nil {
					return nil, err
				}

				if v, ok := env[s[0]]; ok {
					return v, nil
				}

				if len(args) > 1 {
					return args[1], nil
				}

				return nil, nil
			},
		},
		// Unset variables read as null.
		Get: func(string) (any, error) { return nil, nil },
	}
}

func sysObject() Members {
	props := map[string]any{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
		"pid":  os.Getpid(),
	}

	if h, err := os.Hostname(); err == nil {
		props["hostname"] = h
	}

	if u, err := user.Current(); err == nil {
		props["user"] = u.Username
	}

	if wd, err := os.Getwd(); err == nil {
		props["cwd"] = wd
	}

	return Members{Name: "sys", Properties: props}
}

func pathObject(env map[string]any) Members {
	unary := func(name string, fn func(string) string) Func {
		return func(args ...any) (any, error) {
			s, err := stringArgs(name, args, 1, 1)
			if err != nil {
				return nil, err
			}

			return fn(s[0]), nil
		}
	}

	variadic := func(name string, fn func(...string) string) Func {
		return func(args ...any) (any, error) {
			s, err := stringArgs(name, args, 0, -1)
			if err != nil {
				return nil, err
			}

			return fn(s...), nil
		}
	}

	munger := func(name string, fn func(subject string, items ...string) string) Func {
		return func(args ...any) (any, error) {
			s, err := stringArgs(name, args, 1, -1)
			if err != nil {
				return nil, err
			}

			subject, _ := env[s[0]].(string)

			return fn(subject, s[1:]...), nil
		}
	}

	return Members{
		Name: "path",
		Methods: map[string]Func{
			"join":    variadic("path.join", filepath.Join),
			"list":    variadic("path.list", pathList),
			"base":    unary("path.base", filepath.Base),
			"dir":     unary("path.dir", filepath.Dir),
			"ext":     unary("path.ext", filepath.Ext),
			"clean":   unary("path.clean", filepath.Clean),
			"abs":     unary("path.abs", pathAbs),
			"prepend": munger("path.prepend", pathPrepend),
			"append":  munger("path.append", pathAppend),
		},
		Constants: map[string]any{
			"separator":     string(filepath.Separator),
			"listSeparator": string(filepath.ListSeparator),
		},
	}
}

func pathAbs(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}

	return filepath.Clean(p)
}

func pathList(items ...string) string {
	return strings.Join(items, string(filepath.ListSeparator))
}

// pathPrepend puts items at the front of the path list subject.
func pathPrepend(subject string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(filepath.ListSeparator)),
		mung.WithPrefixItems(items...),
	).String()
}

// pathAppend puts items at the end of the path list subject. It is
// pathPrepend with the roles swapped: the subject is placed in front of the
// items.
func pathAppend(subject string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(pathList(items...)),
		mung.WithDelim(string(filepath.ListSeparator)),
		mung.WithPrefixItems(filepath.SplitList(subject)...),
	).String()
}

// stringArgs stringifies the arguments of the named builtin after checking
// their count. A negative most means no upper bound.
func stringArgs(name string, args []any, least, most int) ([]string, error) {
	if len(args) < least || (most >= 0 && len(args) > most) {
		want := strconv.Itoa(least)

		switch {
		case most < 0:
			want = "at least " + want
		case most != least:
			want += " to " + strconv.Itoa(most)
		}

		return nil, ErrCall.Detail("%s expects %s arguments, got %d",
			name, want, len(args))
	}

	s := make([]string, len(args))

	for i, arg := range args {
		str, err := Stringify(arg)
		if err != nil {
			return nil, err
		}

		s[i] = str
	}

	return s, nil
}
