package luajit_test

import (
	"fmt"

	"github.com/feather-lang/luajit"
)

func Example() {
	l := luajit.New()
	defer l.Close()
	l.OpenLibs()

	if err := l.DoString(`return string.rep("ab", 3)`); err != nil {
		fmt.Println("error:", err)
		return
	}
	s, _ := l.ToString(-1)
	fmt.Println(s)
	// Output: ababab
}

func ExampleState_Register() {
	l := luajit.New()
	defer l.Close()

	l.Register("double", func(l *luajit.State) (int, error) {
		n, _ := l.ToInteger(1)
		l.PushInteger(n * 2)
		return 1, nil
	})
	l.DoString(`return double(21)`)

	n, _ := l.ToInteger(-1)
	fmt.Println(n)
	// Output: 42
}

func ExampleNewObject() {
	l := luajit.New()
	defer l.Close()
	l.OpenBase()

	p := luajit.NewObject[Point2D](l)
	p.X, p.Y = 1, 4
	l.SetGlobal("p")

	if err := l.DoString(`p:setX(10); return p:sub()`); err != nil {
		fmt.Println("error:", err)
		return
	}
	n, _ := l.ToInteger(-1)
	fmt.Println(n, p.X)
	// Output: 6 10
}

func ExampleStatusOf() {
	l := luajit.New()
	defer l.Close()

	err := l.DoString("this is not lua")
	fmt.Println(luajit.StatusOf(err))
	// Output: syntax error
}
