package luajit_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/feather-lang/luajit"
)

// globalString evaluates the global name as a string.
func globalString(t *testing.T, l *luajit.State, name string) string {
	t.Helper()
	if err := l.GetGlobal(name); err != nil {
		t.Fatalf("GetGlobal(%q) failed: %v", name, err)
	}
	defer l.Pop(1)
	s, ok := l.ToString(-1)
	if !ok {
		t.Fatalf("expected string in %q, got %s", name, l.TypeName(-1))
	}
	return s
}

func add(l *luajit.State) (int, error) {
	a, ok1 := l.ToInteger(1)
	b, ok2 := l.ToInteger(2)
	if !ok1 || !ok2 {
		return 0, errors.New("add: two numbers expected")
	}
	l.PushInteger(a + b)
	return 1, nil
}

func TestRegister(t *testing.T) {
	l := luajit.New()
	defer l.Close()
	l.OpenBase()

	if err := l.Register("add", add); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := l.DoString(`result = tostring(add(2, 3))`); err != nil {
		t.Fatalf("DoString failed: %v", err)
	}
	if got := globalString(t, l, "result"); got != "5" {
		t.Errorf("expected '5', got %q", got)
	}
}

func TestPushFunction(t *testing.T) {
	l := luajit.New()
	defer l.Close()

	l.PushGoFunction(add)
	if !l.IsGoFunction(-1) {
		t.Fatal("expected a Go function")
	}
	l.PushInteger(40)
	l.PushInteger(2)
	if err := l.Call(2, 1); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if n, _ := l.ToInteger(-1); n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestFunctionErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	l := luajit.New(luajit.WithLogger(zap.New(core)))
	defer l.Close()
	l.OpenBase()

	l.Register("fail", func(l *luajit.State) (int, error) {
		return 0, errors.New("went wrong")
	})
	l.Register("explode", func(l *luajit.State) (int, error) {
		panic("kaboom")
	})
	l.Register("liar", func(l *luajit.State) (int, error) {
		return 3, nil
	})
	l.Register("negative", func(l *luajit.State) (int, error) {
		l.PushString("stale")
		return -1, nil
	})
	l.Register("fakeyield", func(l *luajit.State) (int, error) {
		return -3, nil
	})

	tests := []struct {
		call string
		want string
	}{
		{"fail()", "went wrong"},
		{"explode()", "kaboom"},
		{"add(1)", "add: two numbers expected"},
		{"liar()", "luajit: function returned 3 results with 0 values on the stack"},
		{"negative()", "luajit: function returned -1 results"},
		{"fakeyield()", "luajit: function returned -3 results"},
	}
	l.Register("add", add)

	for _, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			src := "ok, msg = pcall(function() return " + tt.call + " end)"
			if err := l.DoString(src); err != nil {
				t.Fatalf("DoString failed: %v", err)
			}
			if got := globalString(t, l, "msg"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("uncaught", func(t *testing.T) {
		err := l.DoString("fail()")
		if got := luajit.StatusOf(err); got != luajit.StatusRuntimeError {
			t.Fatalf("expected StatusRuntimeError, got %v", got)
		}
		if err.Error() != "went wrong" {
			t.Errorf("expected 'went wrong', got %q", err.Error())
		}
		l.SetTop(0)
	})

	entries := logs.FilterMessage("recovered panic in Go function").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 panic entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "kaboom" {
		t.Errorf("expected error 'kaboom' in log entry, got %v", got)
	}
}

func TestPushClosure(t *testing.T) {
	l := luajit.New()
	defer l.Close()

	l.PushString("hello, ")
	l.PushInteger(0)
	l.PushClosure(2, func(l *luajit.State) (int, error) {
		prefix, _ := l.ToString(luajit.UpvalueIndex(2))
		calls, _ := l.ToInteger(luajit.UpvalueIndex(3))
		l.PushInteger(calls + 1)
		l.Replace(luajit.UpvalueIndex(3))

		name, _ := l.ToString(1)
		l.PushString(prefix + name)
		l.PushInteger(calls + 1)
		return 2, nil
	})
	if err := l.SetGlobal("greet"); err != nil {
		t.Fatalf("SetGlobal failed: %v", err)
	}

	if err := l.DoString(`greet("a"); msg, calls = greet("bob")`); err != nil {
		t.Fatalf("DoString failed: %v", err)
	}
	if got := globalString(t, l, "msg"); got != "hello, bob" {
		t.Errorf("expected 'hello, bob', got %q", got)
	}
	if got := globalString(t, l, "calls"); got != "2" {
		t.Errorf("expected 2 calls, got %q", got)
	}
}

func TestRegisterFuncs(t *testing.T) {
	l := luajit.New()
	defer l.Close()
	l.OpenBase()

	twice := func(l *luajit.State) (int, error) {
		n, _ := l.ToInteger(1)
		l.PushInteger(n * 2)
		return 1, nil
	}

	t.Run("library table", func(t *testing.T) {
		err := l.RegisterFuncs("geo", []luajit.Reg{
			luajit.Func("twice", twice),
			luajit.Func("add", add),
			{},
			{},
			luajit.Func("hidden", twice),
		})
		if err != nil {
			t.Fatalf("RegisterFuncs failed: %v", err)
		}
		if l.Top() != 1 || !l.IsTable(-1) {
			t.Fatalf("expected the library table on the stack, got %d values", l.Top())
		}
		l.SetTop(0)

		err = l.DoString(`assert(geo.twice(4) == 8); assert(geo.add(1, 2) == 3); assert(geo.hidden == nil)`)
		if err != nil {
			t.Fatalf("DoString failed: %v", err)
		}
	})

	t.Run("extends existing library", func(t *testing.T) {
		if err := l.RegisterFuncs("geo", []luajit.Reg{luajit.Func("thrice", twice)}); err != nil {
			t.Fatalf("RegisterFuncs failed: %v", err)
		}
		l.SetTop(0)
		if err := l.DoString(`assert(geo.twice and geo.thrice)`); err != nil {
			t.Fatalf("expected both functions in geo: %v", err)
		}
	})

	t.Run("table on stack", func(t *testing.T) {
		l.NewTable()
		if err := l.RegisterFuncs("", []luajit.Reg{luajit.Func("twice", twice), {}}); err != nil {
			t.Fatalf("RegisterFuncs failed: %v", err)
		}
		if err := l.SetGlobal("anon"); err != nil {
			t.Fatalf("SetGlobal failed: %v", err)
		}
		if err := l.DoString(`assert(anon.twice(5) == 10)`); err != nil {
			t.Fatalf("DoString failed: %v", err)
		}
	})

	t.Run("no table on stack", func(t *testing.T) {
		l.PushInteger(1)
		err := l.RegisterFuncs("", []luajit.Reg{luajit.Func("twice", twice)})
		if err == nil {
			t.Fatal("expected an error")
		}
		l.SetTop(0)
	})

	t.Run("entry without function", func(t *testing.T) {
		err := l.RegisterFuncs("bad", []luajit.Reg{{Name: "missing"}})
		if err == nil || !strings.Contains(err.Error(), `"missing"`) {
			t.Fatalf("expected error naming the entry, got %v", err)
		}
		if l.Top() != 0 {
			t.Errorf("expected nothing pushed, got %d values", l.Top())
		}
	})
}

func TestYieldFromGo(t *testing.T) {
	l := luajit.New()
	defer l.Close()

	l.Register("pause", func(l *luajit.State) (int, error) {
		return l.Yield(1)
	})

	co := l.NewThread()
	if co.Owned() {
		t.Error("expected thread state to be borrowed")
	}
	if err := co.LoadString("local v = pause(7) return v * 2", "=co"); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	status, err := co.Resume(0)
	if err != nil || status != luajit.StatusYield {
		t.Fatalf("expected yield, got %v, %v", status, err)
	}
	if co.Status() != luajit.StatusYield {
		t.Errorf("expected suspended coroutine, got %v", co.Status())
	}
	if n, _ := co.ToInteger(-1); n != 7 {
		t.Errorf("expected 7 yielded, got %d", n)
	}
	co.Pop(co.Top())

	co.PushInteger(21)
	status, err = co.Resume(1)
	if err != nil || status != luajit.StatusOK {
		t.Fatalf("expected finish, got %v, %v", status, err)
	}
	if n, _ := co.ToInteger(-1); n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestResumeError(t *testing.T) {
	l := luajit.New()
	defer l.Close()
	l.OpenBase()

	co := l.NewThread()
	if err := co.LoadString(`error("inside", 0)`, "=co"); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	status, err := co.Resume(0)
	if status != luajit.StatusRuntimeError {
		t.Fatalf("expected StatusRuntimeError, got %v", status)
	}
	if err == nil || err.Error() != "inside" {
		t.Errorf("expected 'inside', got %v", err)
	}
}
