package media

import (
	_ "embed"
	"fmt"
	"os/exec"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition describes how to invoke a known image viewer.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command overrides the executable when it differs from the viewer name.
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type viewersFile struct {
	Viewers map[string]ViewerDefinition `toml:"viewers"`
}

// ViewerRegistry maps viewer names to their invocation.
type ViewerRegistry struct {
	viewers map[string]ViewerDefinition
	goos    string
}

// NewViewerRegistry loads the embedded definitions for goos.
func NewViewerRegistry(goos string) (*ViewerRegistry, error) {
	var f viewersFile
	if err := toml.Unmarshal(viewersTOML, &f); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	if f.Viewers == nil {
		f.Viewers = map[string]ViewerDefinition{}
	}
	return &ViewerRegistry{viewers: f.Viewers, goos: goos}, nil
}

// Executable returns the program a viewer name runs.
func (r *ViewerRegistry) Executable(name string) string {
	if def, ok := r.viewers[name]; ok && def.Command != "" {
		return def.Command
	}
	return name
}

// Command builds the invocation of viewer name for ref. Unknown viewers run
// with ref as their only argument.
func (r *ViewerRegistry) Command(name, ref string) (*exec.Cmd, error) {
	def, ok := r.viewers[name]
	if !ok {
		return exec.Command(name, ref), nil
	}
	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", name, r.goos)
	}

	args := append(slices.Clone(def.Args), ref)
	return exec.Command(r.Executable(name), args...), nil
}
