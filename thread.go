package luajit

// #include "shim.h"
import "C"

// NewThread pushes a new coroutine and returns a borrowed State for it.
// The coroutine lives as long as its value is reachable from the
// interpreter, so keep the pushed value (or a [State.Ref] to it).
func (l *State) NewThread() *State {
	l.checkOpen()
	ptr := C.lua_newthread(l.ptr)
	return &State{ptr: ptr, rt: l.rt}
}

// Resume starts or continues the coroutine l with nargs arguments on its
// stack.
//
// It returns StatusYield when the coroutine yields and StatusOK when it
// finishes; in both cases the yielded or returned values are on l's stack.
// On failure the error message is on top of the stack and the coroutine
// is dead.
func (l *State) Resume(nargs int) (Status, error) {
	ret := C.lua_resume(l.ptr, C.int(nargs))
	switch ret {
	case C.LUA_OK:
		return StatusOK, nil
	case C.LUA_YIELD:
		return StatusYield, nil
	default:
		err := l.newError(ret)
		return err.Status, err
	}
}

// Status returns the coroutine status of l: StatusOK for a normal thread,
// StatusYield for a suspended one, or the error that stopped it.
func (l *State) Status() Status {
	return statusFromCode(int(C.lua_status(l.ptr)))
}
