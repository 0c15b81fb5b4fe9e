package luajit

// #include "shim.h"
import "C"

import "unsafe"

// Buffer builds a string piece by piece on the interpreter stack.
//
// While a Buffer is in use it owns the top of the stack: only add values
// with its methods. A Buffer must always be finished with
// [Buffer.PushResult], which also releases its C memory; a Buffer that is
// never finished leaks it.
type Buffer struct {
	l *State
	b *C.luaL_Buffer // in C memory because the struct points into itself
}

// NewBuffer starts a string buffer on l.
func (l *State) NewBuffer() *Buffer {
	l.checkOpen()
	b := (*C.luaL_Buffer)(C.malloc(C.sizeof_luaL_Buffer))
	if b == nil {
		panic("luajit: cannot allocate buffer")
	}
	C.luaL_buffinit(l.ptr, b)
	return &Buffer{l: l, b: b}
}

func (b *Buffer) checkActive() {
	if b.b == nil {
		panic("luajit: buffer already finished")
	}
}

// AddString appends s.
func (b *Buffer) AddString(s string) {
	b.checkActive()
	C.luaL_addlstring(b.b, (*C.char)(unsafe.Pointer(unsafe.StringData(s))), C.size_t(len(s)))
}

// AddValue pops the string or number on top of the stack and appends it.
func (b *Buffer) AddValue() {
	b.checkActive()
	C.luaL_addvalue(b.b)
}

// PushResult pushes the built string and releases the buffer.
func (b *Buffer) PushResult() {
	b.checkActive()
	C.luaL_pushresult(b.b)
	C.free(unsafe.Pointer(b.b))
	b.b = nil
}
