package luajit

// #include "shim.h"
import "C"

import (
	"fmt"
	"io"
	"os"
	"runtime/cgo"
	"strings"
	"unsafe"

	"go.uber.org/zap"
)

// PCall calls the function below the nargs arguments on top of the stack
// in protected mode.
//
// msgh is the stack index of a message handler, or 0 for none. On failure
// the returned error is an [*Error] and the error value is left on top of
// the stack in place of the results.
func (l *State) PCall(nargs, nresults, msgh int) error {
	l.checkOpen()
	if ret := C.lua_pcall(l.ptr, C.int(nargs), C.int(nresults), C.int(msgh)); ret != C.LUA_OK {
		return l.newError(ret)
	}
	return nil
}

// Call is PCall without a message handler. Calls from Go always run in
// protected mode so that errors never unwind through Go frames.
func (l *State) Call(nargs, nresults int) error {
	return l.PCall(nargs, nresults, 0)
}

const (
	readerBufferSize = 4096
	maxEmptyReads    = 100
)

type reader struct {
	r   io.Reader
	buf *C.char
	err error
	eof bool
}

// Load compiles a chunk read from r and pushes it as a function.
// On failure the error message is pushed instead.
//
// chunkName follows the interpreter convention: "@file" names a file,
// "=name" is used verbatim and anything else is treated as source text.
func (l *State) Load(r io.Reader, chunkName string) error {
	l.checkOpen()
	rd := &reader{
		r:   r,
		buf: (*C.char)(C.malloc(readerBufferSize)),
	}
	defer C.free(unsafe.Pointer(rd.buf))
	handle := cgo.NewHandle(rd)
	defer handle.Delete()

	name := C.CString(chunkName)
	defer C.free(unsafe.Pointer(name))

	ret := C.luajit_load(l.ptr, unsafe.Pointer(&handle), name)
	if rd.err != nil {
		// A truncated read leaves either a chunk or a message; both go.
		l.Pop(1)
		e := &Error{Status: StatusFileError, Code: C.LUA_ERRFILE, Message: rd.err.Error()}
		l.PushString(e.Message)
		return fmt.Errorf("luajit: load %s: %w", formatChunkName(chunkName), e)
	}
	if ret != C.LUA_OK {
		return fmt.Errorf("luajit: load %s: %w", formatChunkName(chunkName), l.newError(ret))
	}
	return nil
}

//export luajitGoRead
func luajitGoRead(ptr *C.lua_State, data unsafe.Pointer, size *C.size_t) *C.char {
	rd := (*cgo.Handle)(data).Value().(*reader)
	*size = 0
	if rd.eof || rd.err != nil {
		return nil
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(rd.buf)), readerBufferSize)
	for i := 0; ; i++ {
		if i == maxEmptyReads {
			rd.err = io.ErrNoProgress
			return nil
		}
		n, err := rd.r.Read(buf)
		if err == io.EOF {
			rd.eof = true
		} else if err != nil {
			rd.err = err
			return nil
		}
		if n > 0 {
			*size = C.size_t(n)
			return rd.buf
		}
		if rd.eof {
			return nil
		}
	}
}

// LoadString compiles src and pushes it as a function.
// See [State.Load] for chunkName.
func (l *State) LoadString(src, chunkName string) error {
	l.checkOpen()
	name := C.CString(chunkName)
	defer C.free(unsafe.Pointer(name))
	ret := C.luaL_loadbuffer(l.ptr, (*C.char)(unsafe.Pointer(unsafe.StringData(src))), C.size_t(len(src)), name)
	if ret != C.LUA_OK {
		return fmt.Errorf("luajit: load %s: %w", formatChunkName(chunkName), l.newError(ret))
	}
	return nil
}

// LoadFile compiles the file at path and pushes it as a function.
//
// The path must name an existing regular file. Otherwise a message is
// pushed and an error with StatusFileError is returned without invoking
// the native loader.
func (l *State) LoadFile(path string) error {
	l.checkOpen()
	if err := checkRegularFile(path); err != nil {
		l.Logger().Debug("file rejected", zap.String("path", path), zap.Error(err))
		e := &Error{Status: StatusFileError, Code: C.LUA_ERRFILE, Message: err.Error()}
		l.PushString(e.Message)
		return e
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if ret := C.luaL_loadfile(l.ptr, cpath); ret != C.LUA_OK {
		return fmt.Errorf("luajit: load %s: %w", path, l.newError(ret))
	}
	return nil
}

func checkRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot open %s", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot read %s: not a regular file", path)
	}
	return nil
}

// DoString loads and runs src, keeping all of its results on the stack.
func (l *State) DoString(src string) error {
	if err := l.LoadString(src, src); err != nil {
		return err
	}
	return l.PCall(0, MultRet, 0)
}

// DoFile loads and runs the file at path, keeping all of its results on
// the stack.
func (l *State) DoFile(path string) error {
	if err := l.LoadFile(path); err != nil {
		return err
	}
	return l.PCall(0, MultRet, 0)
}

func formatChunkName(chunkName string) string {
	if strings.HasPrefix(chunkName, "@") || strings.HasPrefix(chunkName, "=") {
		return chunkName[1:]
	}
	return "(string)"
}
