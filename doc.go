// Package luajit binds the LuaJIT runtime (Lua 5.1 API) for Go programs.
//
// # Overview
//
// The interpreter itself is the pre-built libluajit-5.1, linked with cgo
// through pkg-config. This package provides:
//
//   - Go constants matching the native ABI (types, status codes,
//     pseudo-indices, collector options)
//   - An owning [State] handle with deterministic teardown
//   - Protected table access, calls and chunk loading that report failures
//     as [*Error] values instead of unwinding through Go frames
//   - Go functions and Go record types callable from scripts
//
// # Quick Start
//
//	import "github.com/feather-lang/luajit"
//
//	func main() {
//	    l := luajit.New()
//	    defer l.Close()
//	    l.OpenLibs()
//
//	    if err := l.DoString(`print("Hello world!")`); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Go Functions
//
// A [Function] receives the State, reads its arguments from the stack,
// pushes its results and returns how many it pushed:
//
//	l.Register("double", func(l *luajit.State) (int, error) {
//	    n, ok := l.ToInteger(1)
//	    if !ok {
//	        return 0, errors.New("double: number expected")
//	    }
//	    l.PushInteger(n * 2)
//	    return 1, nil
//	})
//
// Returned errors and panics become script errors, catchable with pcall.
//
// Several functions can be installed in a library table at once with
// [State.RegisterFuncs]:
//
//	l.RegisterFuncs("geo", []luajit.Reg{
//	    luajit.Func("distance", distance),
//	    luajit.Func("area", area),
//	})
//
// # Record Types
//
// A Go struct whose pointer implements [Object] can be pushed as a
// userdata. Its methods live in a table named after the type, which is
// created once per interpreter by [RegisterType] and also published as a
// global, so scripts can call constructors registered with [Func]:
//
//	p := luajit.NewObject[Point2D](l)
//	p.X, p.Y = 1, 4
//	l.SetGlobal("p")
//	l.DoString(`q = Point2D:new(); q:setX(p:add())`)
//
// The userdata holds a [runtime/cgo.Handle] to the Go record, so the
// record never moves and stays alive until the interpreter collects the
// userdata. The finalizer lives in a metatable kept in the registry, which
// scripts cannot reach without the debug library.
//
// # Errors
//
// Operations that run script code return nil or an error wrapping an
// [*Error]. Use [StatusOf] or [errors.Is] with a [Status] to classify it:
//
//	if errors.Is(err, luajit.StatusSyntaxError) {
//	    // report a compile error
//	}
//
// Following the native convention, the error value stays on the stack.
//
// # Thread Safety
//
// A State is not safe for concurrent use. Each interpreter should be
// confined to a single goroutine, together with every borrowed State
// viewing it.
package luajit
