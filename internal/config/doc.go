// Package config defines the format-agnostic configuration model for a run:
// the explorer pool, the galaxy headquarters traverses, the visited-set
// backend and the optional result relay, along with the Loader interface
// implemented by the format-specific adapters (HCL, YAML).
package config
