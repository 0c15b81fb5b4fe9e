package luajit

// #include "shim.h"
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"go.uber.org/zap"
)

// Object is implemented by Go record types exposed to scripts as userdata.
//
// TypeName names the type: its record metatable in the registry and its
// method table as a global. Methods lists the functions of that table, typically built with
// [Method] and [Func]. Both are called on a zero value, so they must not
// depend on the record's contents.
//
//	type Point2D struct{ X, Y int }
//
//	func (*Point2D) TypeName() string { return "Point2D" }
//
//	func (*Point2D) Methods() []luajit.Reg {
//	    return []luajit.Reg{
//	        luajit.Method("add", func(p *Point2D, l *luajit.State) (int, error) {
//	            l.PushInteger(int64(p.X + p.Y))
//	            return 1, nil
//	        }),
//	    }
//	}
type Object interface {
	TypeName() string
	Methods() []Reg
}

// RegisterType makes sure the method table of T exists.
//
// The first call builds the method table and publishes it as a global.
// Records get a separate metatable, stored in the registry under the type
// name, with __index pointing at the method table, __name set to the type
// name and a __gc finalizer releasing the Go record. Its __metatable field
// is the method table, so getmetatable on a record returns the global and
// scripts cannot reach the finalizer without the debug library. Later calls
// find the metatable in the registry and leave both tables unchanged. The
// stack is left unchanged.
func RegisterType[T any, PT interface {
	*T
	Object
}](l *State) {
	l.pushTypeTable(PT(new(T)))
	l.Pop(1)
}

// pushTypeTable pushes the record metatable for o's type, building it and
// the method table on first use. Both are complete before anything else
// can see them.
func (l *State) pushTypeTable(o Object) {
	l.checkOpen()
	name := o.TypeName()
	if l.RawGetField(RegistryIndex, name) == TypeTable {
		return
	}
	l.Pop(1)

	regs := trimRegs(o.Methods())
	if err := checkRegs(regs); err != nil {
		panic(fmt.Sprintf("luajit: methods of %s: %v", name, err))
	}
	l.CreateTable(0, len(regs))
	for _, r := range regs {
		l.PushGoFunction(r.Func)
		l.RawSetField(-2, r.Name)
	}

	l.CreateTable(0, 4)
	l.PushValue(-2)
	l.RawSetField(-2, "__index")
	l.PushValue(-2)
	l.RawSetField(-2, "__metatable")
	l.PushString(name)
	l.RawSetField(-2, "__name")
	C.lua_pushcclosure(l.ptr, C.lua_CFunction(C.luajit_gc), 0)
	l.RawSetField(-2, "__gc")

	l.PushValue(-1)
	l.RawSetField(RegistryIndex, name)
	l.Insert(-2)
	l.RawSetField(GlobalsIndex, name)

	l.Logger().Debug("type registered",
		zap.Stringer("id", l.ID()),
		zap.String("type", name),
		zap.Int("methods", len(regs)))
}

// pushRecord pushes a userdata holding o, which must be a pointer.
func (l *State) pushRecord(o Object) {
	l.pushTypeTable(o)
	ud := (*cgo.Handle)(C.lua_newuserdata(l.ptr, C.size_t(unsafe.Sizeof(cgo.Handle(0)))))
	*ud = cgo.NewHandle(o)
	l.Insert(-2)
	l.SetMetatable(-2)
}

// NewObject pushes a new userdata for a zero T and returns the record.
// The record stays reachable until the interpreter collects the userdata.
func NewObject[T any, PT interface {
	*T
	Object
}](l *State) *T {
	v := new(T)
	l.pushRecord(PT(v))
	return v
}

// PushObject pushes a userdata holding a copy of v.
func PushObject[T any, PT interface {
	*T
	Object
}](l *State, v T) {
	p := new(T)
	*p = v
	l.pushRecord(PT(p))
}

// CheckUserdata returns the T record at idx.
// ok is false if the value is not a userdata of T's type.
func CheckUserdata[T any, PT interface {
	*T
	Object
}](l *State, idx int) (*T, bool) {
	return CheckUserdataEx[T](l, idx, PT(new(T)).TypeName())
}

// CheckUserdataEx returns the *T held by the userdata at idx, whose
// metatable must be the registry table name.
func CheckUserdataEx[T any](l *State, idx int, name string) (*T, bool) {
	idx = l.AbsIndex(idx)
	if l.Type(idx) != TypeUserdata || !l.GetMetatable(idx) {
		return nil, false
	}
	l.RawGetField(RegistryIndex, name)
	ok := l.RawEqual(-1, -2)
	l.Pop(2)
	if !ok {
		return nil, false
	}
	h := *(*cgo.Handle)(l.ToUserdata(idx))
	if h == 0 {
		return nil, false
	}
	v, ok := h.Value().(*T)
	return v, ok
}
