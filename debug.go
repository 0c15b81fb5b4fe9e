package luajit

// #include "shim.h"
import "C"

import (
	"strings"
	"unsafe"
)

// Debug describes a function or an activation record.
// Fields not requested from [ActivationRecord.Info] are left zero, except
// CurrentLine which is -1.
type Debug struct {
	Name            string
	NameWhat        string
	What            string
	Source          string
	ShortSource     string
	CurrentLine     int
	LineDefined     int
	LastLineDefined int
	NumUpvalues     int
}

// ActivationRecord is a frame of the call stack returned by [State.Stack].
// It is only valid until the frame returns.
type ActivationRecord struct {
	state *State
	ar    C.lua_Debug
}

// Stack returns the activation record at level, where level 0 is the
// running function. ok is false if the stack is not that deep.
func (l *State) Stack(level int) (ar *ActivationRecord, ok bool) {
	ar = &ActivationRecord{state: l}
	if C.lua_getstack(l.ptr, C.int(level), &ar.ar) == 0 {
		return nil, false
	}
	return ar, true
}

// Info fills a Debug for the record. what selects the fields as in
// lua_getinfo: 'n' for names, 'S' for source, 'l' for the current line and
// 'u' for the upvalue count. 'f' and 'L' are ignored.
func (ar *ActivationRecord) Info(what string) *Debug {
	what = strings.Map(func(r rune) rune {
		if r == 'f' || r == 'L' || r == '>' {
			return -1
		}
		return r
	}, what)
	cwhat := C.CString(what)
	defer C.free(unsafe.Pointer(cwhat))
	if C.lua_getinfo(ar.state.ptr, cwhat, &ar.ar) == 0 {
		return nil
	}

	db := &Debug{CurrentLine: -1}
	for _, c := range what {
		switch c {
		case 'n':
			db.Name = goStringOrEmpty(ar.ar.name)
			db.NameWhat = goStringOrEmpty(ar.ar.namewhat)
		case 'S':
			db.What = goStringOrEmpty(ar.ar.what)
			db.Source = goStringOrEmpty(ar.ar.source)
			db.ShortSource = C.GoString(&ar.ar.short_src[0])
			db.LineDefined = int(ar.ar.linedefined)
			db.LastLineDefined = int(ar.ar.lastlinedefined)
		case 'l':
			db.CurrentLine = int(ar.ar.currentline)
		case 'u':
			db.NumUpvalues = int(ar.ar.nups)
		}
	}
	return db
}

func goStringOrEmpty(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

// Where returns the "chunk:line:" prefix the interpreter uses for error
// messages raised at level.
func (l *State) Where(level int) string {
	C.luaL_where(l.ptr, C.int(level))
	s, _ := l.ToString(-1)
	l.Pop(1)
	return s
}

// Traceback returns msg followed by a traceback of the stack starting at
// level.
func (l *State) Traceback(msg string, level int) string {
	var cmsg *C.char
	if msg != "" {
		cmsg = C.CString(msg)
		defer C.free(unsafe.Pointer(cmsg))
	}
	C.luaL_traceback(l.ptr, l.ptr, cmsg, C.int(level))
	s, _ := l.ToString(-1)
	l.Pop(1)
	return s
}

// TracebackHandler is a message handler for [State.PCall] that appends a
// traceback to string error values.
//
//	l.PushGoFunction(luajit.TracebackHandler)
//	h := l.Top()
//	// push function and arguments
//	err := l.PCall(nargs, nresults, h)
func TracebackHandler(l *State) (int, error) {
	msg, ok := l.ToString(1)
	if !ok {
		l.SetTop(1)
		return 1, nil
	}
	l.PushString(l.Traceback(msg, 1))
	return 1, nil
}
