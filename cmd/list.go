package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loomkit/loom/internal/registry"
)

var listOutput string

// componentInfo is the listing shape for one registered definition.
type componentInfo struct {
	Name    string      `yaml:"name"`
	Type    string      `yaml:"type"`
	Scope   string      `yaml:"scope"`
	Lazy    bool        `yaml:"lazy,omitempty"`
	Aliases []string    `yaml:"aliases,omitempty"`
	Params  []paramInfo `yaml:"params,omitempty"`
	Source  string      `yaml:"source"`
}

type paramInfo struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
	Ref   string `yaml:"ref,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [location...]",
	Short: "List the components a definition set registers",
	Long: `List loads the given definition locations (or the configured ones)
and prints every registered component in registration order.

Examples:
  loom list defs/app.xml
  loom list --output yaml defs/app.xml
  loom list -p prod defs/app.xml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		locations, err := locationsFromArgs(args)
		if err != nil {
			return err
		}

		reg := newRegistry()
		r, cleanup, err := newReader(reg)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := r.LoadLocations(cmd.Context(), locations...)
		if err != nil {
			return fmt.Errorf("loading definitions: %w", err)
		}
		for _, p := range result.Problems {
			fmt.Fprintf(os.Stderr, "problem: %s\n", p.Error())
		}

		infos := collectComponents(reg)
		switch listOutput {
		case "yaml":
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(infos); err != nil {
				return fmt.Errorf("encoding listing: %w", err)
			}
			return enc.Close()
		case "text":
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s", info.Name, info.Type, info.Scope)
				if info.Lazy {
					fmt.Fprint(cmd.OutOrStdout(), "\tlazy")
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		default:
			return fmt.Errorf("unknown output format %q (want \"text\" or \"yaml\")", listOutput)
		}
	},
}

func collectComponents(reg *registry.Registry) []componentInfo {
	names := reg.Names()
	infos := make([]componentInfo, 0, len(names))
	for _, name := range names {
		def, err := reg.Get(name)
		if err != nil {
			continue
		}
		info := componentInfo{
			Name:    name,
			Type:    def.TypeName(),
			Scope:   def.Scope(),
			Lazy:    def.Lazy(),
			Aliases: reg.Aliases(name),
			Source:  def.Source(),
		}
		for _, p := range def.Params() {
			info.Params = append(info.Params, paramInfo{Name: p.Name, Value: p.Value, Ref: p.Ref})
		}
		infos = append(infos, info)
	}
	return infos
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "text",
		"output format: text or yaml")
	rootCmd.AddCommand(listCmd)
}
