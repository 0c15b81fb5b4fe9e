package luajit_test

import (
	"strings"
	"testing"

	"github.com/feather-lang/luajit"
)

func TestTraceback(t *testing.T) {
	l := luajit.New()
	defer l.Close()
	l.OpenBase()

	var where, trace string
	var info *luajit.Debug
	l.Register("inspect", func(l *luajit.State) (int, error) {
		where = l.Where(1)
		trace = l.Traceback("here", 1)
		if ar, ok := l.Stack(1); ok {
			info = ar.Info("Sl")
		}
		return 0, nil
	})

	src := "local x = 1\ninspect()\n"
	if err := l.LoadString(src, "=probe"); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if err := l.Call(0, 0); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if where != "probe:2: " {
		t.Errorf("expected 'probe:2: ', got %q", where)
	}
	if !strings.HasPrefix(trace, "here\nstack traceback:") {
		t.Errorf("unexpected traceback %q", trace)
	}
	if info == nil {
		t.Fatal("expected activation record info")
	}
	if info.ShortSource != "probe" || info.CurrentLine != 2 || info.What != "main" {
		t.Errorf("unexpected info %+v", info)
	}

	if _, ok := l.Stack(50); ok {
		t.Error("expected no activation record at level 50")
	}
}

func TestTracebackHandler(t *testing.T) {
	l := luajit.New()
	defer l.Close()
	l.OpenBase()

	l.PushGoFunction(luajit.TracebackHandler)
	h := l.Top()
	if err := l.LoadString(`local function f() error("deep") end f()`, "=chunk"); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	err := l.PCall(0, 0, h)
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "chunk:1: deep") || !strings.Contains(msg, "stack traceback:") {
		t.Errorf("expected message with traceback, got %q", msg)
	}
}

func TestBuffer(t *testing.T) {
	l := luajit.New()
	defer l.Close()

	b := l.NewBuffer()
	b.AddString("hello")
	b.AddString(", ")
	l.PushString("world")
	b.AddValue()
	b.AddString(strings.Repeat("!", 10000))
	b.PushResult()

	s, ok := l.ToString(-1)
	if !ok {
		t.Fatalf("expected string, got %s", l.TypeName(-1))
	}
	if !strings.HasPrefix(s, "hello, world!") || len(s) != len("hello, world")+10000 {
		t.Errorf("unexpected result of length %d", len(s))
	}
}

func TestBufferFinished(t *testing.T) {
	l := luajit.New()
	defer l.Close()

	b := l.NewBuffer()
	b.AddString("done")
	b.PushResult()

	for name, use := range map[string]func(){
		"AddString":  func() { b.AddString("more") },
		"AddValue":   func() { b.AddValue() },
		"PushResult": b.PushResult,
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if got := recover(); got != "luajit: buffer already finished" {
					t.Errorf("expected finished buffer panic, got %v", got)
				}
			}()
			use()
		})
	}
	if s, _ := l.ToString(-1); s != "done" || l.Top() != 1 {
		t.Errorf("expected only %q on the stack, got %q with %d values", "done", s, l.Top())
	}
}

func TestConstants(t *testing.T) {
	if luajit.RegistryIndex != -10000 || luajit.EnvironIndex != -10001 || luajit.GlobalsIndex != -10002 {
		t.Errorf("unexpected pseudo-indices %d %d %d",
			luajit.RegistryIndex, luajit.EnvironIndex, luajit.GlobalsIndex)
	}
	if got := luajit.UpvalueIndex(3); got != luajit.GlobalsIndex-3 {
		t.Errorf("expected %d, got %d", luajit.GlobalsIndex-3, got)
	}
	if luajit.MultRet != -1 {
		t.Errorf("expected MultRet -1, got %d", luajit.MultRet)
	}
	if luajit.TypeNone != -1 || luajit.TypeThread != 8 {
		t.Errorf("unexpected type tags %d %d", luajit.TypeNone, luajit.TypeThread)
	}
	if !strings.HasPrefix(luajit.JITVersion, "LuaJIT 2.") {
		t.Errorf("unexpected runtime %q", luajit.JITVersion)
	}
}
