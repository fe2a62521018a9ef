// Package manifest decodes the YAML bring-up manifest a host process
// can pass in. It carries queue capacities, max tasks, a log level, an
// app list and a metrics address; it has no slab-size field. The
// kernel core itself has no notion of a manifest, and cmd/hubhost uses
// only the log level and metrics address from it: the kernel's queue
// capacities, slab size and task-table size always come from
// internal/constants.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
)

// Manifest is the decoded shape of a bring-up YAML file. Zero-valued
// fields are filled from internal/constants defaults by Parse.
type Manifest struct {
	InternalQueueCapacity int      `yaml:"internal_queue_capacity"`
	ExternalQueueCapacity int      `yaml:"external_queue_capacity"`
	MaxTasks              int      `yaml:"max_tasks"`
	LogLevel              string   `yaml:"log_level"`
	Apps                  []string `yaml:"apps"`
	MetricsAddr           string   `yaml:"metrics_addr"`
}

// Defaults returns a Manifest populated entirely from
// internal/constants, i.e. what an absent or empty manifest file
// resolves to.
func Defaults() Manifest {
	return Manifest{
		InternalQueueCapacity: constants.InternalQueueCapacity,
		ExternalQueueCapacity: constants.ExternalQueueCapacity,
		MaxTasks:              constants.MaxTasks,
		LogLevel:              "info",
	}
}

// Load reads and decodes a YAML manifest from path, then fills any
// zero-valued numeric/string fields from Defaults().
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML bytes into a Manifest, applying defaults for
// any field left unset.
func Parse(data []byte) (Manifest, error) {
	m := Defaults()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decoding yaml: %w", err)
	}
	return m.withDefaults(), nil
}

// withDefaults fills any field the YAML left at its zero value.
func (m Manifest) withDefaults() Manifest {
	d := Defaults()
	if m.InternalQueueCapacity == 0 {
		m.InternalQueueCapacity = d.InternalQueueCapacity
	}
	if m.ExternalQueueCapacity == 0 {
		m.ExternalQueueCapacity = d.ExternalQueueCapacity
	}
	if m.MaxTasks == 0 {
		m.MaxTasks = d.MaxTasks
	}
	if m.LogLevel == "" {
		m.LogLevel = d.LogLevel
	}
	return m
}
