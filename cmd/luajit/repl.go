package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/feather-lang/luajit"
)

const (
	prompt         = "> "
	continuePrompt = ">> "
)

type evalResult int

const (
	evalDone evalResult = iota
	evalIncomplete
)

func (r *runner) repl(in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "enter raw mode")
	}
	defer term.Restore(fd, saved)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)
	fmt.Fprintln(t, luajit.JITVersion)

	// Output of print has to go through the terminal while it is raw.
	if err := r.l.Register("print", printTo(t)); err != nil {
		return err
	}

	var pending string
	for {
		line, err := t.ReadLine()
		if err == io.EOF {
			fmt.Fprintln(t)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}

		src := line
		if pending != "" {
			src = pending + "\n" + line
		}
		if r.evalLine(t, src) == evalIncomplete {
			pending = src
			t.SetPrompt(continuePrompt)
			continue
		}
		pending = ""
		t.SetPrompt(prompt)
	}
}

// evalLine runs src as an expression if it parses as one and as a
// statement otherwise, writing results and errors to w.
func (r *runner) evalLine(w io.Writer, src string) evalResult {
	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	if err := l.LoadString("return "+src, "=stdin"); err != nil {
		l.Pop(1)
		if err := l.LoadString(src, "=stdin"); err != nil {
			if isIncomplete(err) {
				return evalIncomplete
			}
			fmt.Fprintln(w, err)
			return evalDone
		}
	}

	l.PushGoFunction(luajit.TracebackHandler)
	l.Insert(base + 1)
	if err := l.PCall(0, luajit.MultRet, base+1); err != nil {
		fmt.Fprintln(w, err)
		return evalDone
	}

	if n := l.Top() - base - 1; n > 0 {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = describe(l, base+2+i)
		}
		fmt.Fprintln(w, strings.Join(parts, "\t"))
	}
	return evalDone
}

// isIncomplete reports whether a syntax error was caused by input ending
// too early.
func isIncomplete(err error) bool {
	var e *luajit.Error
	if !errors.As(err, &e) || e.Status != luajit.StatusSyntaxError {
		return false
	}
	return strings.HasSuffix(e.Message, "'<eof>'")
}
