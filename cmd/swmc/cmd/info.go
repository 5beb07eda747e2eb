package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/swmc/pkg/microcontroller"
)

var infoCmd = &cobra.Command{
	Use:   "info <file> [component-id]",
	Short: "Show microcontroller information",
	Long: `Display a summary of a microcontroller file.

Without a component id: shows the microcontroller summary
With a component id: shows that component's properties and ports`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	_, mc, err := readFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		var id uint32
		if _, err := fmt.Sscan(args[1], &id); err != nil {
			return fmt.Errorf("invalid component id %q", args[1])
		}
		c, ok := mc.Component(id)
		if !ok {
			return fmt.Errorf("component %d not found", id)
		}
		showComponent(out, mc, c)
		return nil
	}

	showSummary(out, mc, args[0])
	return nil
}

func showSummary(out io.Writer, mc *microcontroller.Microcontroller, filename string) {
	fmt.Fprintf(out, "Microcontroller: %s\n", filename)
	fmt.Fprintf(out, "Name: %s\n", mc.Name)
	if mc.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", mc.Description)
	}
	fmt.Fprintf(out, "Dialect: %s\n", mc.Dialect)
	fmt.Fprintf(out, "Size: %dx%d\n", mc.Width, mc.Length)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Nodes: %d\n", len(mc.Nodes))
	fmt.Fprintf(out, "  Components: %d\n", len(mc.Components))
	fmt.Fprintf(out, "  Bridges: %d\n", len(mc.Bridges()))
	fmt.Fprintf(out, "  Connections: %d\n", len(mc.Connections))
	fmt.Fprintln(out)

	if len(mc.Nodes) > 0 {
		fmt.Fprintln(out, "Nodes:")
		for _, n := range mc.Nodes {
			fmt.Fprintf(out, "  %d %s (%s %s, bridge %d)\n", n.ID, n.Label, n.Type, n.Mode, n.ComponentID())
		}
		fmt.Fprintln(out)
	}

	if len(mc.Components) > 0 {
		fmt.Fprintln(out, "Components:")
		counts := make(map[string]int)
		for _, c := range mc.Components {
			counts[c.Kind.Name]++
		}
		var kinds []string
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(out, "  %s: %d\n", k, counts[k])
		}
	}
}

func showComponent(out io.Writer, mc *microcontroller.Microcontroller, c *microcontroller.Component) {
	fmt.Fprintf(out, "Component: %d\n", c.ID)
	fmt.Fprintf(out, "Kind: %s", c.Kind.Name)
	if c.Kind.Title != "" {
		fmt.Fprintf(out, " (%s)", c.Kind.Title)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Position: (%g, %g)\n", c.Position.X, c.Position.Y)
	fmt.Fprintln(out)

	if props := c.Props.List(); len(props) > 0 {
		fmt.Fprintln(out, "Properties:")
		for _, p := range props {
			fmt.Fprintf(out, "  %s: %s\n", p.Name, p.Value)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Ports:")
	for _, p := range c.Kind.Inputs {
		to := microcontroller.Endpoint{Component: c.ID, Port: p.Index}
		if conn, ok := mc.Driver(to); ok {
			fmt.Fprintf(out, "  %s %s (%s) <- %s\n", p.Tag, p.Name, p.Type, conn.From)
		} else {
			fmt.Fprintf(out, "  %s %s (%s)\n", p.Tag, p.Name, p.Type)
		}
	}
	for _, p := range c.Kind.Outputs {
		fmt.Fprintf(out, "  %s %s (%s)\n", p.Tag, p.Name, p.Type)
	}
}
