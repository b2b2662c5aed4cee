package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-loom/loom/pkg/compose"
	"github.com/go-loom/loom/pkg/telemetry"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Run the demo composition",
		Long: `Run a small counter composition for a number of incremental passes,
printing the tree after each pass.

The demo reads loom.yaml from the working directory for logging and
metrics settings. With metrics enabled, a Prometheus endpoint serves
pass and scope counters while the demo runs.`,
		Usage: "loom demo [--passes N]",
		Run:   runDemo,
	})
}

func runDemo(args []string) error {
	passes := 3
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--passes" && i+1 < len(args):
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				return fmt.Errorf("--passes requires a positive integer, got %q", args[i+1])
			}
			passes = n
			i++
		case strings.HasPrefix(args[i], "--passes="):
			n, err := strconv.Atoi(strings.TrimPrefix(args[i], "--passes="))
			if err != nil || n < 1 {
				return fmt.Errorf("--passes requires a positive integer")
			}
			passes = n
		default:
			return fmt.Errorf("unknown flag %q", args[i])
		}
	}

	cfg, err := telemetry.LoadOptional(".")
	if err != nil {
		return err
	}
	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	if srv := telemetry.ServeMetrics(cfg.Metrics); srv != nil {
		defer srv.Close()
		fmt.Printf("metrics on %s%s\n", cfg.Metrics.ListenAddress, cfg.Metrics.Path)
	}

	app := newDemoApp()
	c := compose.New(app.root())
	defer c.Close()
	c.SetLogger(logger)

	if err := c.ComposeOnce(); err != nil {
		return err
	}
	fmt.Printf("pass 1: %s\n", c)

	for i := 2; i <= passes; i++ {
		app.tick()
		if err := c.ComposeOnce(); err != nil {
			return err
		}
		fmt.Printf("pass %d: %s\n", i, c)
	}
	return nil
}

// demoApp is a counter plus a keyed list that grows by one row per pass.
type demoApp struct {
	bump func()
}

func newDemoApp() *demoApp { return &demoApp{} }

func (d *demoApp) tick() {
	if d.bump != nil {
		d.bump()
	}
}

func (d *demoApp) root() compose.Composable {
	return compose.FromFn("Demo", func(cx *compose.Scope) compose.Composable {
		count, setCount := compose.UseState(cx, 1)
		d.bump = func() { setCount(count + 1) }

		rows := make([]int, count)
		for i := range rows {
			rows[i] = i + 1
		}
		return compose.Group(
			compose.FromFn("Counter"+strconv.Itoa(count), func(*compose.Scope) compose.Composable {
				return nil
			}),
			compose.ForEach(rows, func(i int) any { return i }, func(i int) compose.Composable {
				return compose.FromFn("Row"+strconv.Itoa(i), func(*compose.Scope) compose.Composable {
					return nil
				})
			}),
		)
	})
}
