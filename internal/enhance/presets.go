package enhance

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Preset is one enhancement instruction profile
type Preset struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresetID is the preset used when a request carries no custom
// instruction.
const DefaultPresetID = "default"

// PresetRegistry holds the enhancement instruction presets loaded from
// the embedded YAML file
type PresetRegistry struct {
	presets []Preset
	byID    map[string]*Preset
	mu      sync.RWMutex
}

// NewPresetRegistry loads the embedded preset file
func NewPresetRegistry() (*PresetRegistry, error) {
	data, err := configFiles.ReadFile("config/presets.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read presets.yaml: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presets.yaml: %w", err)
	}

	r := &PresetRegistry{
		presets: file.Presets,
		byID:    make(map[string]*Preset, len(file.Presets)),
	}
	for i := range r.presets {
		r.byID[r.presets[i].ID] = &r.presets[i]
	}

	if _, ok := r.byID[DefaultPresetID]; !ok {
		return nil, fmt.Errorf("presets.yaml is missing the %q preset", DefaultPresetID)
	}

	return r, nil
}

// Get returns a preset by ID
func (r *PresetRegistry) Get(id string) (*Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	preset, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", id)
	}
	return preset, nil
}

// Default returns the default preset
func (r *PresetRegistry) Default() *Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[DefaultPresetID]
}

// List returns all presets in the order they are defined
func (r *PresetRegistry) List() []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Preset, len(r.presets))
	copy(out, r.presets)
	return out
}
