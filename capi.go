package luajit

/*
#cgo pkg-config: luajit
#include "shim.h"
*/
import "C"

import "fmt"

// Pseudo-indices addressing tables that do not live on the stack.
const (
	RegistryIndex int = C.LUA_REGISTRYINDEX
	EnvironIndex  int = C.LUA_ENVIRONINDEX
	GlobalsIndex  int = C.LUA_GLOBALSINDEX
)

// MultRet requests all results from [State.PCall] and friends.
const MultRet int = C.LUA_MULTRET

// MinStack is the number of free stack slots guaranteed to a Go function
// when it is called from the interpreter.
const MinStack int = C.LUA_MINSTACK

// Reference sentinels returned by [State.Ref].
const (
	RefNil int = C.LUA_REFNIL
	NoRef  int = C.LUA_NOREF
)

// UpvalueIndex returns the pseudo-index of the i-th upvalue of the running
// function.
//
// Closures created by [State.PushClosure] keep the Go function in upvalue 1,
// so their own values start at UpvalueIndex(2).
func UpvalueIndex(i int) int {
	if i < 1 || i > 256 {
		panic(fmt.Sprintf("luajit: invalid upvalue index %d", i))
	}
	return GlobalsIndex - i
}

// Type is the type tag of a stack value.
type Type int

const (
	TypeNone          Type = C.LUA_TNONE
	TypeNil           Type = C.LUA_TNIL
	TypeBoolean       Type = C.LUA_TBOOLEAN
	TypeLightUserdata Type = C.LUA_TLIGHTUSERDATA
	TypeNumber        Type = C.LUA_TNUMBER
	TypeString        Type = C.LUA_TSTRING
	TypeTable         Type = C.LUA_TTABLE
	TypeFunction      Type = C.LUA_TFUNCTION
	TypeUserdata      Type = C.LUA_TUSERDATA
	TypeThread        Type = C.LUA_TTHREAD
)

// String returns the name the interpreter uses for the type.
func (tp Type) String() string {
	switch tp {
	case TypeNone:
		return "no value"
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeLightUserdata, TypeUserdata:
		return "userdata"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	case TypeThread:
		return "thread"
	default:
		return fmt.Sprintf("Type(%d)", int(tp))
	}
}

// GCOption selects the collector operation performed by [State.GC].
type GCOption int

const (
	GCStop       GCOption = C.LUA_GCSTOP
	GCRestart    GCOption = C.LUA_GCRESTART
	GCCollect    GCOption = C.LUA_GCCOLLECT
	GCCount      GCOption = C.LUA_GCCOUNT
	GCCountBytes GCOption = C.LUA_GCCOUNTB
	GCStep       GCOption = C.LUA_GCSTEP
	GCSetPause   GCOption = C.LUA_GCSETPAUSE
	GCSetStepMul GCOption = C.LUA_GCSETSTEPMUL
)

// Debug hook events and masks.
const (
	HookCall    int = C.LUA_HOOKCALL
	HookRet     int = C.LUA_HOOKRET
	HookLine    int = C.LUA_HOOKLINE
	HookCount   int = C.LUA_HOOKCOUNT
	HookTailRet int = C.LUA_HOOKTAILRET

	MaskCall  int = C.LUA_MASKCALL
	MaskRet   int = C.LUA_MASKRET
	MaskLine  int = C.LUA_MASKLINE
	MaskCount int = C.LUA_MASKCOUNT
)

// Standard library names.
const (
	BaseLibraryName      = "base"
	CoroutineLibraryName = C.LUA_COLIBNAME
	TableLibraryName     = C.LUA_TABLIBNAME
	IOLibraryName        = C.LUA_IOLIBNAME
	OSLibraryName        = C.LUA_OSLIBNAME
	StringLibraryName    = C.LUA_STRLIBNAME
	MathLibraryName      = C.LUA_MATHLIBNAME
	DebugLibraryName     = C.LUA_DBLIBNAME
	PackageLibraryName   = C.LUA_LOADLIBNAME
	BitLibraryName       = C.LUA_BITLIBNAME
	JITLibraryName       = C.LUA_JITLIBNAME
	FFILibraryName       = C.LUA_FFILIBNAME
)

// Version strings of the linked runtime.
const (
	Version       = C.LUA_VERSION
	JITVersion    = C.LUAJIT_VERSION
	JITVersionNum = C.LUAJIT_VERSION_NUM
)
