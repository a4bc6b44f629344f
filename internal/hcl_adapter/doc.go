// Package hcl_adapter implements config.Loader for HCL files. Expressions are
// evaluated with a small function library (upper, lower, format, concat,
// range, env) so galaxies can be generated and secrets pulled from the
// environment.
package hcl_adapter
