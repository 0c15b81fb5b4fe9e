// Command luajit runs Lua scripts on the LuaJIT runtime.
//
//	luajit script.lua arg1 arg2   run a script with arguments
//	luajit -e 'print(1 + 1)'      run a chunk
//	luajit -l base -l string      open only some libraries
//	luajit                        interactive prompt on a terminal,
//	                              otherwise run the script on stdin
package main

import (
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	exec        []string
	libs        []string
	logLevel    string
	interactive bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "luajit [script [args...]]",
		Short:        "Run Lua scripts on the LuaJIT runtime",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	// Everything after the script name belongs to the script.
	f.SetInterspersed(false)
	f.StringVar(&opts.configPath, "config", "", "configuration file (default ./luajit.yaml if present)")
	f.StringArrayVarP(&opts.exec, "exec", "e", nil, "execute a chunk before the script")
	f.StringSliceVarP(&opts.libs, "lib", "l", nil, "open only these libraries")
	f.StringVar(&opts.logLevel, "log-level", "", "log level, overriding the configuration")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "enter interactive mode after running")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
