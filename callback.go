package luajit

// #include "shim.h"
import "C"

import (
	"errors"
	"fmt"
	"runtime/cgo"
	"runtime/debug"
	"unsafe"

	"go.uber.org/zap"
)

// Function is a Go function callable from scripts.
//
// Arguments are at stack indices 1 through l.Top(). The function pushes its
// results and returns how many there are. A returned error is raised as a
// script error carrying err.Error() as its message, so it can be caught by
// pcall. A panic is recovered and raised the same way.
type Function func(l *State) (int, error)

// PushGoFunction pushes f as a function value.
func (l *State) PushGoFunction(f Function) {
	l.PushClosure(0, f)
}

// PushClosure pops n values and pushes f as a closure holding them as
// upvalues 2 through n+1. See [UpvalueIndex].
func (l *State) PushClosure(n int, f Function) {
	if f == nil {
		panic("luajit: nil Function")
	}
	if n < 0 || n > 254 {
		panic(fmt.Sprintf("luajit: invalid upvalue count %d", n))
	}
	l.checkOpen()
	l.pushHandle(cgo.NewHandle(f))
	l.Insert(-(n + 1))
	C.lua_pushcclosure(l.ptr, C.lua_CFunction(C.luajit_trampoline), C.int(n+1))
}

// Register sets the global name to f.
func (l *State) Register(name string, f Function) error {
	l.PushGoFunction(f)
	return l.SetGlobal(name)
}

// Yield suspends the running coroutine with the nresults values on top of
// the stack once the Go function returns. It must be used as the return
// statement of a Function:
//
//	return l.Yield(1)
func (l *State) Yield(nresults int) (int, error) {
	if nresults < 0 || nresults > l.Top() {
		return 0, fmt.Errorf("luajit: cannot yield %d values", nresults)
	}
	l.yielding, l.nyield = true, nresults
	return 0, nil
}

// callFunction runs f, turning panics into errors.
func callFunction(f Function, l *State) (n int, err error) {
	defer func() {
		if v := recover(); v != nil {
			n = 0
			switch v := v.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = fmt.Errorf("%v", v)
			}
			l.Logger().Error("recovered panic in Go function",
				zap.Stringer("id", l.ID()),
				zap.Error(err),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	return f(l)
}

//export luajitGoCall
func luajitGoCall(ptr *C.lua_State) C.int {
	l := &State{ptr: ptr}
	h := (*cgo.Handle)(C.lua_touserdata(ptr, C.int(UpvalueIndex(1))))
	f := h.Value().(Function)

	n, err := callFunction(f, l)
	if err == nil {
		switch {
		case l.yielding:
			return C.int(int(C.LUAJIT_CALL_YIELD) - l.nyield)
		case n < 0:
			err = fmt.Errorf("luajit: function returned %d results", n)
		case n > l.Top():
			err = fmt.Errorf("luajit: function returned %d results with %d values on the stack", n, l.Top())
		}
	}
	if err != nil {
		l.PushString(err.Error())
		return C.LUAJIT_CALL_ERROR
	}
	return C.int(n)
}

// -----------------------------------------------------------------------------
// Registration
// -----------------------------------------------------------------------------

// Reg is one entry of a function list. The zero Reg is the list sentinel:
// entries after it are ignored.
type Reg struct {
	Name string
	Func Function
}

// Func returns a Reg binding name to a free function.
func Func(name string, f Function) Reg {
	return Reg{Name: name, Func: f}
}

// Method returns a Reg binding name to a method of a record type.
//
// The generated function recovers the receiver from argument 1 with
// [CheckUserdata]. If argument 1 is not a T record it raises
// "bad argument #1 to 'name' (T expected, got <type>)".
func Method[T any, PT interface {
	*T
	Object
}](name string, m func(PT, *State) (int, error)) Reg {
	return Reg{Name: name, Func: func(l *State) (int, error) {
		self, ok := CheckUserdata[T, PT](l, 1)
		if !ok {
			return 0, fmt.Errorf("bad argument #1 to '%s' (%s expected, got %s)",
				name, PT(new(T)).TypeName(), l.TypeName(1))
		}
		return m(PT(self), l)
	}}
}

// trimRegs cuts regs at the first sentinel.
func trimRegs(regs []Reg) []Reg {
	for i, r := range regs {
		if r.Name == "" && r.Func == nil {
			return regs[:i]
		}
	}
	return regs
}

func checkRegs(regs []Reg) error {
	for _, r := range regs {
		if r.Name == "" {
			return errors.New("luajit: function entry without a name")
		}
		if r.Func == nil {
			return fmt.Errorf("luajit: function entry %q has no function", r.Name)
		}
	}
	return nil
}

// RegisterFuncs stores the functions of regs in a table.
//
// If lib is not empty the table is the library table lib, created the way
// luaL_register does and published as a global of the same name. If lib is
// empty the table must already be on top of the stack. Either way the table
// is left on top of the stack.
//
// regs may end with one or more sentinel entries.
func (l *State) RegisterFuncs(lib string, regs []Reg) error {
	l.checkOpen()
	regs = trimRegs(regs)
	if err := checkRegs(regs); err != nil {
		return err
	}
	if lib != "" {
		name := C.CString(lib)
		defer C.free(unsafe.Pointer(name))
		if ret := C.luajit_libtable(l.ptr, name); ret != C.LUA_OK {
			err := l.newError(ret)
			l.Pop(1)
			return fmt.Errorf("luajit: register %s: %w", lib, err)
		}
	} else if !l.IsTable(-1) {
		return fmt.Errorf("luajit: register: expected table on top of the stack, got %s", l.TypeName(-1))
	}
	for _, r := range regs {
		l.PushGoFunction(r.Func)
		l.RawSetField(-2, r.Name)
	}
	return nil
}
