package luajit

import "fmt"

// Pusher is implemented by Go values that know how to push themselves.
type Pusher interface {
	PushTo(l *State)
}

// Push pushes v using the conversion for its Go type:
//
//	nil                       -> nil
//	int, int8 ... uint64      -> integer
//	float32, float64          -> number
//	string, []byte            -> string (copied)
//	bool                      -> boolean
//	Function                  -> Go function
//	Pusher                    -> whatever PushTo pushes
//	*T implementing Object    -> record userdata sharing the *T
//
// Records must be pushed as the pointer type whose methods implement
// Object, otherwise [CheckUserdata] will not recognize them.
// Push panics for any other type.
func (l *State) Push(v any) {
	switch v := v.(type) {
	case nil:
		l.PushNil()
	case int:
		l.PushInteger(int64(v))
	case int8:
		l.PushInteger(int64(v))
	case int16:
		l.PushInteger(int64(v))
	case int32:
		l.PushInteger(int64(v))
	case int64:
		l.PushInteger(v)
	case uint:
		l.PushInteger(int64(v))
	case uint8:
		l.PushInteger(int64(v))
	case uint16:
		l.PushInteger(int64(v))
	case uint32:
		l.PushInteger(int64(v))
	case uint64:
		l.PushInteger(int64(v))
	case float32:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case string:
		l.PushString(v)
	case []byte:
		l.PushBytes(v)
	case bool:
		l.PushBoolean(v)
	case Function:
		l.PushGoFunction(v)
	case func(*State) (int, error):
		l.PushGoFunction(v)
	case Pusher:
		v.PushTo(l)
	case Object:
		l.pushRecord(v)
	default:
		panic(fmt.Sprintf("luajit: cannot push value of type %T", v))
	}
}
