package luajit

// #include "shim.h"
import "C"

import (
	"math"
	"runtime/cgo"
	"unsafe"
)

// AbsIndex converts idx into an index that does not depend on the stack top.
func (l *State) AbsIndex(idx int) int {
	if idx > 0 || idx <= RegistryIndex {
		return idx
	}
	return l.Top() + idx + 1
}

// Top returns the index of the top element, which is also the number of
// elements on the stack.
func (l *State) Top() int {
	return int(C.lua_gettop(l.ptr))
}

// SetTop sets the stack top to idx, filling with nil or discarding.
func (l *State) SetTop(idx int) {
	C.lua_settop(l.ptr, C.int(idx))
}

// Pop removes n elements from the top of the stack.
func (l *State) Pop(n int) {
	C.lua_settop(l.ptr, C.int(-n-1))
}

// PushValue pushes a copy of the element at idx.
func (l *State) PushValue(idx int) {
	C.lua_pushvalue(l.ptr, C.int(idx))
}

// Remove removes the element at idx, shifting the elements above it down.
func (l *State) Remove(idx int) {
	C.lua_remove(l.ptr, C.int(idx))
}

// Insert moves the top element into idx, shifting the elements above it up.
func (l *State) Insert(idx int) {
	C.lua_insert(l.ptr, C.int(idx))
}

// Replace pops the top element and stores it at idx.
func (l *State) Replace(idx int) {
	C.lua_replace(l.ptr, C.int(idx))
}

// CheckStack ensures there are at least n free slots on the stack.
func (l *State) CheckStack(n int) bool {
	return C.lua_checkstack(l.ptr, C.int(n)) != 0
}

// XMove pops n values from l and pushes them onto to.
// Both states must belong to the same interpreter.
func (l *State) XMove(to *State, n int) {
	C.lua_xmove(l.ptr, to.ptr, C.int(n))
}

// -----------------------------------------------------------------------------
// Type inspection
// -----------------------------------------------------------------------------

// Type returns the type of the value at idx, or TypeNone for an
// invalid index.
func (l *State) Type(idx int) Type {
	return Type(C.lua_type(l.ptr, C.int(idx)))
}

// TypeName returns the name of the type of the value at idx.
func (l *State) TypeName(idx int) string {
	return l.Type(idx).String()
}

func (l *State) IsNumber(idx int) bool   { return C.lua_isnumber(l.ptr, C.int(idx)) != 0 }
func (l *State) IsString(idx int) bool   { return C.lua_isstring(l.ptr, C.int(idx)) != 0 }
func (l *State) IsUserdata(idx int) bool { return C.lua_isuserdata(l.ptr, C.int(idx)) != 0 }

func (l *State) IsBoolean(idx int) bool       { return l.Type(idx) == TypeBoolean }
func (l *State) IsNil(idx int) bool           { return l.Type(idx) == TypeNil }
func (l *State) IsNone(idx int) bool          { return l.Type(idx) == TypeNone }
func (l *State) IsNoneOrNil(idx int) bool     { return l.Type(idx) <= TypeNil }
func (l *State) IsTable(idx int) bool         { return l.Type(idx) == TypeTable }
func (l *State) IsFunction(idx int) bool      { return l.Type(idx) == TypeFunction }
func (l *State) IsLightUserdata(idx int) bool { return l.Type(idx) == TypeLightUserdata }
func (l *State) IsThread(idx int) bool        { return l.Type(idx) == TypeThread }

// IsGoFunction reports whether the value at idx is a function pushed with
// [State.PushGoFunction] or [State.PushClosure].
func (l *State) IsGoFunction(idx int) bool {
	if C.lua_iscfunction(l.ptr, C.int(idx)) == 0 {
		return false
	}
	return C.lua_tocfunction(l.ptr, C.int(idx)) == C.lua_CFunction(C.luajit_trampoline)
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// ToString returns the string at idx. Numbers are converted in place, as
// the interpreter does. ok is false for any other type.
func (l *State) ToString(idx int) (s string, ok bool) {
	var n C.size_t
	p := C.lua_tolstring(l.ptr, C.int(idx), &n)
	if p == nil {
		return "", false
	}
	return C.GoStringN(p, C.int(n)), true
}

// ToInteger converts the value at idx to an integer. ok is false unless the
// value is a number or a numeric string.
func (l *State) ToInteger(idx int) (n int64, ok bool) {
	if !l.IsNumber(idx) {
		return 0, false
	}
	return int64(C.lua_tointeger(l.ptr, C.int(idx))), true
}

// ToInt is ToInteger narrowed to int.
func (l *State) ToInt(idx int) (int, bool) {
	n, ok := l.ToInteger(idx)
	if !ok || n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

// ToNumber converts the value at idx to a float64.
func (l *State) ToNumber(idx int) (float64, bool) {
	if !l.IsNumber(idx) {
		return 0, false
	}
	return float64(C.lua_tonumber(l.ptr, C.int(idx))), true
}

// ToFloat32 is ToNumber narrowed to float32.
func (l *State) ToFloat32(idx int) (float32, bool) {
	f, ok := l.ToNumber(idx)
	return float32(f), ok
}

// ToBool returns the boolean at idx. ok is false for non-boolean values;
// use [State.ToBoolean] for truthiness.
func (l *State) ToBool(idx int) (b bool, ok bool) {
	if l.Type(idx) != TypeBoolean {
		return false, false
	}
	return C.lua_toboolean(l.ptr, C.int(idx)) != 0, true
}

// ToBoolean reports whether the value at idx is neither false nor nil.
func (l *State) ToBoolean(idx int) bool {
	return C.lua_toboolean(l.ptr, C.int(idx)) != 0
}

// ToUserdata returns the block address of a full userdata or the value of
// a light userdata, and nil otherwise.
func (l *State) ToUserdata(idx int) unsafe.Pointer {
	return C.lua_touserdata(l.ptr, C.int(idx))
}

// ToPointer returns an identity for the value at idx, suitable only for
// comparison and hashing.
func (l *State) ToPointer(idx int) uintptr {
	return uintptr(C.lua_topointer(l.ptr, C.int(idx)))
}

// ToThread returns a borrowed State for the coroutine at idx, or nil.
func (l *State) ToThread(idx int) *State {
	ptr := C.lua_tothread(l.ptr, C.int(idx))
	if ptr == nil {
		return nil
	}
	return &State{ptr: ptr, rt: l.rt}
}

// ObjLen returns the length of a string, table or userdata.
func (l *State) ObjLen(idx int) int {
	return int(C.lua_objlen(l.ptr, C.int(idx)))
}

// RawEqual reports whether the two values are primitively equal.
func (l *State) RawEqual(idx1, idx2 int) bool {
	return C.lua_rawequal(l.ptr, C.int(idx1), C.int(idx2)) != 0
}

// -----------------------------------------------------------------------------
// Pushers
// -----------------------------------------------------------------------------

func (l *State) PushNil() {
	C.lua_pushnil(l.ptr)
}

func (l *State) PushInteger(n int64) {
	C.lua_pushinteger(l.ptr, C.lua_Integer(n))
}

func (l *State) PushNumber(n float64) {
	C.lua_pushnumber(l.ptr, C.lua_Number(n))
}

// PushString pushes a copy of s.
func (l *State) PushString(s string) {
	C.lua_pushlstring(l.ptr, (*C.char)(unsafe.Pointer(unsafe.StringData(s))), C.size_t(len(s)))
}

// PushBytes pushes a copy of b as a string.
func (l *State) PushBytes(b []byte) {
	C.lua_pushlstring(l.ptr, (*C.char)(unsafe.Pointer(unsafe.SliceData(b))), C.size_t(len(b)))
}

func (l *State) PushBoolean(b bool) {
	var v C.int
	if b {
		v = 1
	}
	C.lua_pushboolean(l.ptr, v)
}

// PushLightUserdata pushes p as a light userdata. p must not point into
// Go memory.
func (l *State) PushLightUserdata(p unsafe.Pointer) {
	C.lua_pushlightuserdata(l.ptr, p)
}

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

// CreateTable pushes a new table with preallocated space.
func (l *State) CreateTable(nArr, nRec int) {
	C.lua_createtable(l.ptr, C.int(nArr), C.int(nRec))
}

// NewTable pushes a new empty table.
func (l *State) NewTable() {
	C.lua_createtable(l.ptr, 0, 0)
}

// GetTable replaces the key on top of the stack with t[key], where t is the
// value at idx. Metamethods run in protected mode: on failure nil is pushed
// in place of the value and the error is returned.
func (l *State) GetTable(idx int) error {
	if ret := C.luajit_gettable(l.ptr, C.int(idx), 0); ret != C.LUA_OK {
		err := l.newError(ret)
		l.Pop(1)
		l.PushNil()
		return err
	}
	return nil
}

// GetField pushes t[k], where t is the value at idx. See [State.GetTable].
func (l *State) GetField(idx int, k string) error {
	idx = l.AbsIndex(idx)
	l.PushString(k)
	return l.GetTable(idx)
}

// GetGlobal pushes the global name. See [State.GetTable].
func (l *State) GetGlobal(name string) error {
	return l.GetField(GlobalsIndex, name)
}

// SetTable does t[key] = value, where t is the value at idx, value is on
// top of the stack and key is just below. Both are popped, even on failure.
func (l *State) SetTable(idx int) error {
	if ret := C.luajit_settable(l.ptr, C.int(idx), 0); ret != C.LUA_OK {
		err := l.newError(ret)
		l.Pop(1)
		return err
	}
	return nil
}

// SetField does t[k] = value, where t is the value at idx and value is on
// top of the stack. The value is popped.
func (l *State) SetField(idx int, k string) error {
	idx = l.AbsIndex(idx)
	l.PushString(k)
	l.Insert(-2)
	return l.SetTable(idx)
}

// SetGlobal pops a value and stores it in the global name.
func (l *State) SetGlobal(name string) error {
	return l.SetField(GlobalsIndex, name)
}

// RawGet is GetTable without metamethods.
func (l *State) RawGet(idx int) Type {
	C.lua_rawget(l.ptr, C.int(idx))
	return l.Type(-1)
}

// RawGetI pushes t[n] without metamethods.
func (l *State) RawGetI(idx, n int) Type {
	C.lua_rawgeti(l.ptr, C.int(idx), C.int(n))
	return l.Type(-1)
}

// RawGetField pushes t[k] without metamethods.
func (l *State) RawGetField(idx int, k string) Type {
	idx = l.AbsIndex(idx)
	l.PushString(k)
	return l.RawGet(idx)
}

// RawSet is SetTable without metamethods.
// It panics if the key is nil or NaN, which no table can hold.
func (l *State) RawSet(idx int) {
	switch l.Type(-2) {
	case TypeNil:
		panic("luajit: table index is nil")
	case TypeNumber:
		if n, _ := l.ToNumber(-2); math.IsNaN(n) {
			panic("luajit: table index is NaN")
		}
	}
	C.lua_rawset(l.ptr, C.int(idx))
}

// RawSetI does t[n] = value without metamethods and pops the value.
func (l *State) RawSetI(idx, n int) {
	C.lua_rawseti(l.ptr, C.int(idx), C.int(n))
}

// RawSetField does t[k] = value without metamethods and pops the value.
func (l *State) RawSetField(idx int, k string) {
	idx = l.AbsIndex(idx)
	l.PushString(k)
	l.Insert(-2)
	l.RawSet(idx)
}

// Next pops a key and pushes the next key-value pair of the table at idx.
// It returns false, pushing nothing, when the traversal is done.
//
//	l.PushNil()
//	for l.Next(t) {
//	    // key at -2, value at -1
//	    l.Pop(1)
//	}
func (l *State) Next(idx int) bool {
	return C.lua_next(l.ptr, C.int(idx)) != 0
}

// GetMetatable pushes the metatable of the value at idx. It returns false,
// pushing nothing, if the value has none.
func (l *State) GetMetatable(idx int) bool {
	return C.lua_getmetatable(l.ptr, C.int(idx)) != 0
}

// SetMetatable pops a table (or nil) and sets it as the metatable of the
// value at idx.
func (l *State) SetMetatable(idx int) {
	C.lua_setmetatable(l.ptr, C.int(idx))
}

// NewMetatable pushes the registry table named tname, creating it if
// needed. It reports whether the table was created.
func (l *State) NewMetatable(tname string) bool {
	name := C.CString(tname)
	defer C.free(unsafe.Pointer(name))
	return C.luaL_newmetatable(l.ptr, name) != 0
}

// NewUserdata pushes a new full userdata of size bytes and returns its
// block. The block is owned by the interpreter and must not hold Go
// pointers.
func (l *State) NewUserdata(size uintptr) unsafe.Pointer {
	return C.lua_newuserdata(l.ptr, C.size_t(size))
}

// -----------------------------------------------------------------------------
// References and collection
// -----------------------------------------------------------------------------

// Ref pops a value and stores it in the table at t under a fresh integer
// key, which is returned. A nil value yields RefNil.
func (l *State) Ref(t int) int {
	return int(C.luaL_ref(l.ptr, C.int(t)))
}

// Unref releases a key obtained from Ref.
func (l *State) Unref(t, ref int) {
	C.luaL_unref(l.ptr, C.int(t), C.int(ref))
}

// GC controls the collector. The meaning of data and of the result depend
// on what.
func (l *State) GC(what GCOption, data int) int {
	return int(C.lua_gc(l.ptr, C.int(what), C.int(data)))
}

// -----------------------------------------------------------------------------
// Go handles
// -----------------------------------------------------------------------------

// handleMetatable names the metatable of userdata blocks holding a cgo.Handle.
var handleMetatable = C.CString("luajit.handle")

// pushHandle pushes a userdata owning h. The handle is deleted when the
// userdata is collected.
func (l *State) pushHandle(h cgo.Handle) {
	ud := (*cgo.Handle)(C.lua_newuserdata(l.ptr, C.size_t(unsafe.Sizeof(h))))
	*ud = h
	if C.luaL_newmetatable(l.ptr, handleMetatable) != 0 {
		l.PushString("__gc")
		C.lua_pushcclosure(l.ptr, C.lua_CFunction(C.luajit_gc), 0)
		l.RawSet(-3)
		l.PushString("__metatable")
		l.PushBoolean(false)
		l.RawSet(-3)
	}
	l.SetMetatable(-2)
}

// toHandle returns the handle stored in the userdata at idx, or nil if the
// value is not a live handle userdata.
func (l *State) toHandle(idx int) *cgo.Handle {
	idx = l.AbsIndex(idx)
	if l.Type(idx) != TypeUserdata || !l.GetMetatable(idx) {
		return nil
	}
	C.lua_getfield(l.ptr, C.LUA_REGISTRYINDEX, handleMetatable)
	ok := l.RawEqual(-1, -2)
	l.Pop(2)
	if !ok {
		return nil
	}
	h := (*cgo.Handle)(l.ToUserdata(idx))
	if *h == 0 {
		return nil
	}
	return h
}

//export luajitGoGC
func luajitGoGC(ptr *C.lua_State) C.int {
	l := &State{ptr: ptr}
	if l.Type(1) != TypeUserdata || !l.GetMetatable(1) {
		return 0
	}
	// Only blocks whose own finalizer is this one hold a handle.
	l.RawGetField(-1, "__gc")
	ours := C.lua_tocfunction(ptr, -1) == C.lua_CFunction(C.luajit_gc)
	l.Pop(2)
	if !ours {
		return 0
	}
	h := (*cgo.Handle)(l.ToUserdata(1))
	if *h != 0 {
		h.Delete()
		*h = 0
	}
	return 0
}
