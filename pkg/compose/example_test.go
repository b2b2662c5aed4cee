package compose_test

import (
	"fmt"

	"github.com/go-loom/loom/pkg/compose"
	"github.com/go-loom/loom/pkg/errors"
)

// This example builds a minimal counter and drives it through two passes.
// State writes queue until the next pass, so the new value appears only
// after ComposeOnce runs again.
func ExampleComposer() {
	var display int
	var increment func()

	app := compose.FromFn("Counter", func(cx *compose.Scope) compose.Composable {
		count, setCount := compose.UseState(cx, 0)
		display = count
		increment = func() { setCount(count + 1) }
		return compose.FromFn("Label", func(*compose.Scope) compose.Composable {
			return nil
		})
	})

	c := compose.New(app)
	defer c.Close()

	c.ComposeOnce()
	fmt.Println(c.String())
	fmt.Println("count:", display)

	increment()
	c.ComposeOnce()
	fmt.Println("count:", display)

	// Output:
	// Counter(Label)
	// count: 0
	// count: 1
}

// This example shows an error boundary absorbing a failure from its
// subtree. The pass itself succeeds and healthy siblings stay mounted.
func ExampleCatch() {
	app := compose.FromFn("App", func(*compose.Scope) compose.Composable {
		return compose.Catch(func(e *errors.CompositionError) {
			fmt.Println("caught:", e.Error())
		}, compose.Group(
			compose.FromFn("Healthy", func(*compose.Scope) compose.Composable { return nil }),
			compose.Throw(fmt.Errorf("disk offline")),
		))
	})

	c := compose.New(app)
	defer c.Close()

	if err := c.ComposeOnce(); err != nil {
		fmt.Println("pass failed:", err)
	}
	fmt.Println(c.String())

	// Output:
	// caught: error in Throw.Compose(): disk offline
	// App(Catch(Healthy, Throw))
}

// This example renders a keyed list. Keys tie scope identity to items, so
// removing an item destroys exactly that item's state.
func ExampleForEach() {
	items := []string{"alpha", "beta"}
	app := compose.FromFn("List", func(*compose.Scope) compose.Composable {
		return compose.ForEach(items, func(s string) any { return s }, func(s string) compose.Composable {
			return compose.FromFn(s, func(*compose.Scope) compose.Composable { return nil })
		})
	})

	c := compose.New(app)
	defer c.Close()

	c.ComposeOnce()
	fmt.Println(c.String())

	// Output:
	// List(alpha, beta)
}
