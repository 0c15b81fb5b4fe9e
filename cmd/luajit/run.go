package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feather-lang/luajit"
	"github.com/feather-lang/luajit/internal/config"
)

func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	lvl, _ := cfg.Level()
	log, err := newLogger(lvl)
	if err != nil {
		return err
	}
	defer log.Sync()

	l := luajit.New(luajit.WithLogger(log))
	defer l.Close()
	if err := cfg.Apply(l); err != nil {
		return err
	}

	r := &runner{l: l, log: log}
	for _, chunk := range opts.exec {
		if err := r.runString(chunk, "=(command line)"); err != nil {
			return err
		}
	}

	switch {
	case len(args) > 0:
		if err := r.runScript(args[0], args[1:]); err != nil {
			return err
		}
	case len(opts.exec) == 0 && !opts.interactive:
		if isTerminal(os.Stdin) {
			return r.repl(os.Stdin, cmd.OutOrStdout())
		}
		return r.runScript("-", nil)
	}

	if opts.interactive {
		return r.repl(os.Stdin, cmd.OutOrStdout())
	}
	return nil
}

func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.Load(opts.configPath)
	case fileExists(config.DefaultFile):
		cfg, err = config.Load(config.DefaultFile)
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if len(opts.libs) > 0 {
		cfg.Libraries = opts.libs
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "flags")
	}
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newLogger logs human-readable lines on a terminal and JSON otherwise.
func newLogger(lvl zapcore.Level) (*zap.Logger, error) {
	var zc zap.Config
	if isTerminal(os.Stderr) {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log, nil
}

type runner struct {
	l   *luajit.State
	log *zap.Logger
}

// call runs the function below nargs arguments with a traceback handler
// and discards its results.
func (r *runner) call(nargs int) error {
	base := r.l.Top() - nargs
	r.l.PushGoFunction(luajit.TracebackHandler)
	r.l.Insert(base)
	defer r.l.SetTop(base - 1)
	return r.l.PCall(nargs, 0, base)
}

func (r *runner) runString(src, chunkName string) error {
	if err := r.l.LoadString(src, chunkName); err != nil {
		r.l.Pop(1)
		return err
	}
	return r.call(0)
}

// runScript runs the file at path, or stdin for "-", with args available
// both as varargs and in the global table arg.
func (r *runner) runScript(path string, args []string) error {
	r.l.CreateTable(len(args), 1)
	r.l.PushString(path)
	r.l.RawSetI(-2, 0)
	for i, a := range args {
		r.l.PushString(a)
		r.l.RawSetI(-2, i+1)
	}
	if err := r.l.SetGlobal("arg"); err != nil {
		return err
	}

	var err error
	if path == "-" {
		err = r.l.Load(os.Stdin, "=stdin")
	} else {
		err = r.l.LoadFile(path)
	}
	if err != nil {
		r.l.Pop(1)
		return err
	}
	for _, a := range args {
		r.l.PushString(a)
	}
	r.log.Debug("running script", zap.String("path", path), zap.Int("args", len(args)))
	return r.call(len(args))
}

// describe renders the value at idx the way the prompt prints results.
func describe(l *luajit.State, idx int) string {
	switch l.Type(idx) {
	case luajit.TypeNil, luajit.TypeNone:
		return "nil"
	case luajit.TypeBoolean:
		b, _ := l.ToBool(idx)
		return fmt.Sprint(b)
	case luajit.TypeNumber, luajit.TypeString:
		l.PushValue(idx)
		s, _ := l.ToString(-1)
		l.Pop(1)
		return s
	default:
		return fmt.Sprintf("%s: 0x%08x", l.TypeName(idx), l.ToPointer(idx))
	}
}

// printTo returns a print function writing to w.
func printTo(w io.Writer) luajit.Function {
	return func(l *luajit.State) (int, error) {
		parts := make([]string, l.Top())
		for i := range parts {
			parts[i] = describe(l, i+1)
		}
		_, err := fmt.Fprintln(w, strings.Join(parts, "\t"))
		return 0, err
	}
}
