package luajit

// #include "shim.h"
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a handle to a LuaJIT interpreter.
//
// A State created with [New] owns its interpreter and must be released with
// [State.Close]. A State obtained from [FromPtr], from a callback, or from
// [State.NewThread] borrows the interpreter and never closes it.
//
// A State is not safe for concurrent use from multiple goroutines.
//
//	l := luajit.New()
//	defer l.Close()
//	l.OpenLibs()
//	if err := l.DoString(`print("hello")`); err != nil {
//	    log.Fatal(err)
//	}
type State struct {
	ptr   *C.lua_State
	owned bool
	rt    *runtimeInfo // resolved lazily for borrowed states

	// set by Yield while a Go function runs
	yielding bool
	nyield   int
}

// runtimeInfo is shared by every State viewing the same interpreter.
type runtimeInfo struct {
	id  uuid.UUID
	log *zap.Logger
}

var nopRuntime = &runtimeInfo{log: zap.NewNop()}

// runtimeKey is the registry field holding the interpreter's runtimeInfo.
var runtimeKey = C.CString("luajit.runtime")

// Option configures a State created by [New].
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for interpreter lifecycle events and
// recovered callback panics. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an interpreter with no libraries opened.
// It panics if the interpreter cannot be allocated.
func New(opts ...Option) *State {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ptr := C.luaL_newstate()
	if ptr == nil {
		panic("luajit: cannot allocate interpreter state")
	}
	l := &State{ptr: ptr, owned: true}
	l.rt = &runtimeInfo{id: uuid.New(), log: o.log.With(zap.String("lua", JITVersion))}

	l.pushHandle(cgo.NewHandle(l.rt))
	C.lua_setfield(l.ptr, C.LUA_REGISTRYINDEX, runtimeKey)

	l.rt.log.Debug("state opened", zap.Stringer("id", l.rt.id))
	return l
}

// FromPtr wraps an existing lua_State pointer without taking ownership.
func FromPtr(ptr unsafe.Pointer) *State {
	if ptr == nil {
		panic("luajit: nil lua_State")
	}
	return &State{ptr: (*C.lua_State)(ptr)}
}

// Close releases the interpreter if this State owns it.
// Calling Close more than once, or on a borrowed State, does nothing.
func (l *State) Close() {
	if l.ptr == nil || !l.owned {
		return
	}
	rt := l.runtime()
	C.lua_close(l.ptr)
	l.ptr = nil
	rt.log.Debug("state closed", zap.Stringer("id", rt.id))
}

// Ptr returns the underlying lua_State pointer.
func (l *State) Ptr() unsafe.Pointer {
	return unsafe.Pointer(l.ptr)
}

// Owned reports whether Close releases the interpreter.
func (l *State) Owned() bool {
	return l.owned
}

// ID identifies the interpreter. States borrowing the same interpreter
// report the same ID. Interpreters not created by [New] have the zero ID.
func (l *State) ID() uuid.UUID {
	return l.runtime().id
}

// Logger returns the logger the interpreter was created with.
func (l *State) Logger() *zap.Logger {
	return l.runtime().log
}

func (l *State) runtime() *runtimeInfo {
	if l.rt != nil {
		return l.rt
	}
	l.rt = nopRuntime
	C.lua_getfield(l.ptr, C.LUA_REGISTRYINDEX, runtimeKey)
	if h := l.toHandle(-1); h != nil {
		if rt, ok := h.Value().(*runtimeInfo); ok {
			l.rt = rt
		}
	}
	l.Pop(1)
	return l.rt
}

// checkOpen panics on a closed State.
func (l *State) checkOpen() {
	if l.ptr == nil {
		panic("luajit: use of closed State")
	}
}

// -----------------------------------------------------------------------------
// Standard libraries
// -----------------------------------------------------------------------------

type library struct {
	name   string
	global string
	open   C.lua_CFunction
}

// libraries lists the openers in the order luaL_openlibs uses.
var libraries = []library{
	{BaseLibraryName, "", C.lua_CFunction(C.luaopen_base)},
	{PackageLibraryName, PackageLibraryName, C.lua_CFunction(C.luaopen_package)},
	{TableLibraryName, TableLibraryName, C.lua_CFunction(C.luaopen_table)},
	{IOLibraryName, IOLibraryName, C.lua_CFunction(C.luaopen_io)},
	{OSLibraryName, OSLibraryName, C.lua_CFunction(C.luaopen_os)},
	{StringLibraryName, StringLibraryName, C.lua_CFunction(C.luaopen_string)},
	{MathLibraryName, MathLibraryName, C.lua_CFunction(C.luaopen_math)},
	{DebugLibraryName, DebugLibraryName, C.lua_CFunction(C.luaopen_debug)},
	{BitLibraryName, BitLibraryName, C.lua_CFunction(C.luaopen_bit)},
	{JITLibraryName, JITLibraryName, C.lua_CFunction(C.luaopen_jit)},
	{FFILibraryName, FFILibraryName, C.lua_CFunction(C.luaopen_ffi)},
}

// LibraryNames returns the names accepted by [State.OpenLibrary].
func LibraryNames() []string {
	names := make([]string, len(libraries))
	for i, lib := range libraries {
		names[i] = lib.name
	}
	return names
}

func (l *State) openLibrary(lib library) {
	l.checkOpen()
	name := C.CString(lib.global)
	defer C.free(unsafe.Pointer(name))
	if ret := C.luajit_openlib(l.ptr, lib.open, name); ret != C.LUA_OK {
		panic(fmt.Sprintf("luajit: open %s library: %v", lib.name, l.newError(ret)))
	}
}

// OpenLibrary opens one standard library by name. See [LibraryNames].
func (l *State) OpenLibrary(name string) error {
	for _, lib := range libraries {
		if lib.name == name {
			l.openLibrary(lib)
			return nil
		}
	}
	return fmt.Errorf("luajit: unknown library %q", name)
}

// OpenLibs opens every standard library, including bit, jit and ffi.
func (l *State) OpenLibs() {
	for _, lib := range libraries {
		l.openLibrary(lib)
	}
}

func (l *State) OpenBase()    { l.openLibrary(libraries[0]) }
func (l *State) OpenPackage() { l.openLibrary(libraries[1]) }
func (l *State) OpenTable()   { l.openLibrary(libraries[2]) }
func (l *State) OpenIO()      { l.openLibrary(libraries[3]) }
func (l *State) OpenOS()      { l.openLibrary(libraries[4]) }
func (l *State) OpenString()  { l.openLibrary(libraries[5]) }
func (l *State) OpenMath()    { l.openLibrary(libraries[6]) }
func (l *State) OpenDebug()   { l.openLibrary(libraries[7]) }
func (l *State) OpenBit()     { l.openLibrary(libraries[8]) }
func (l *State) OpenJIT()     { l.openLibrary(libraries[9]) }
func (l *State) OpenFFI()     { l.openLibrary(libraries[10]) }
