package cmd

import (
	"fmt"

	"github.com/go-loom/loom/pkg/compose"
	"github.com/go-loom/loom/pkg/inspector"
)

func init() {
	RegisterCommand(&Command{
		Name:  "snapshot",
		Short: "Print the demo tree as YAML",
		Long: `Compose the demo tree once and print an inspector snapshot:
every scope with its name, tree position, and generation.`,
		Usage: "loom snapshot",
		Run:   runSnapshot,
	})
}

func runSnapshot(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("snapshot takes no arguments")
	}

	app := newDemoApp()
	c := compose.New(app.root())
	defer c.Close()

	if err := c.ComposeOnce(); err != nil {
		return err
	}

	out, err := inspector.Capture(c).YAML()
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
