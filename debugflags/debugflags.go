// Package debugflags holds the driver's debug/override configuration.
//
// Flags is a plain value threaded explicitly into the components that
// consume it; there is no process-wide flag singleton, so tests can run
// with distinct configurations side by side. Load reads an optional YAML
// override file and then applies NEO_* environment variables on top.
package debugflags

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Flags is the set of behavior overrides the driver core consults.
// The zero value is the production default.
type Flags struct {
	// CreateMultipleSubDevices requests that a root device expose N generic
	// sub-devices. 0 or 1 means a flat root device.
	CreateMultipleSubDevices uint32 `yaml:"createMultipleSubDevices"`

	// EngineInstancedSubDevices exposes one leaf sub-device per compute
	// engine instance when the hardware reports more than one.
	EngineInstancedSubDevices bool `yaml:"engineInstancedSubDevices"`

	// DeferOsContextInitialization delays hardware context creation for
	// regular, non-default engines until first use.
	DeferOsContextInitialization bool `yaml:"deferOsContextInitialization"`

	// DebuggerLogBitmask enables debugger side observations (tracked
	// address reporting) when non-zero and a debug session is attached.
	DebuggerLogBitmask uint32 `yaml:"debuggerLogBitmask"`

	// PrintDebugMessages raises klog verbosity for driver trace points.
	PrintDebugMessages bool `yaml:"printDebugMessages"`
}

// Load reads flags from the YAML file at path, then applies environment
// overrides. A missing file is not an error: the zero Flags (plus any
// environment overrides) is returned.
func Load(path string) (Flags, error) {
	var flags Flags
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No override file, environment only.
	case err != nil:
		return flags, errors.Wrapf(err, "reading debug flags file %q", path)
	default:
		if err := yaml.Unmarshal(data, &flags); err != nil {
			return flags, errors.Wrapf(err, "parsing debug flags file %q", path)
		}
	}
	flags.applyEnv()
	return flags, nil
}

func (f *Flags) applyEnv() {
	if v, ok := envUint32("NEO_CreateMultipleSubDevices"); ok {
		f.CreateMultipleSubDevices = v
	}
	if v, ok := envBool("NEO_EngineInstancedSubDevices"); ok {
		f.EngineInstancedSubDevices = v
	}
	if v, ok := envBool("NEO_DeferOsContextInitialization"); ok {
		f.DeferOsContextInitialization = v
	}
	if v, ok := envUint32("NEO_DebuggerLogBitmask"); ok {
		f.DebuggerLogBitmask = v
	}
	if v, ok := envBool("NEO_PrintDebugMessages"); ok {
		f.PrintDebugMessages = v
	}
}

func envUint32(name string) (uint32, bool) {
	s, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		klog.Warningf("Ignoring %s=%q: %v", name, s, err)
		return 0, false
	}
	return uint32(v), true
}

func envBool(name string) (bool, bool) {
	s, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		klog.Warningf("Ignoring %s=%q: %v", name, s, err)
		return false, false
	}
	return v, true
}
