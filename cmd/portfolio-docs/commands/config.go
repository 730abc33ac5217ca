package commands

import (
	"fmt"
	"io"
	"os"
)

// ConfigCmd implements the 'config' command.
type ConfigCmd struct {
	out io.Writer `kong:"-"`
}

// Run prints the resolved configuration as YAML.
func (c *ConfigCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	_, err = fmt.Fprint(w, cfg.String())
	return err
}
