package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/disksched-sim/disksched-sim/sim"
)

// Presets represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Presets struct {
	Version string               `yaml:"version"`
	Presets map[string]yaml.Node `yaml:"presets"`
}

// loadPresets parses defaults.yaml. Uses strict field checking so typos in
// section names are errors; preset bodies are checked when applied.
func loadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("reading defaults file: %w", err)
	}
	var p Presets
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return Presets{}, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return p, nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p.Presets))
	for name := range p.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply layers the named preset over base.
func (p Presets) Apply(name string, base sim.SimConfig) (sim.SimConfig, error) {
	node, ok := p.Presets[name]
	if !ok {
		return base, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(p.Names(), ", "))
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return base, fmt.Errorf("preset %s: %w", name, err)
	}
	cfg, err := sim.DecodeConfig(data, base)
	if err != nil {
		return base, fmt.Errorf("preset %s: %w", name, err)
	}
	return cfg, nil
}

// configCmd prints the effective configuration as YAML
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective simulation config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := opts.resolve(cmd.Flags())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// presetsCmd lists the presets of the defaults file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the presets in the defaults file",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPresets(opts.defaultsFile)
		if err != nil {
			return err
		}
		for _, name := range p.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
