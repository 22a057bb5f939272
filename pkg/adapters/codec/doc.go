// Package codec provides bundle document encodings.
//
// Implementations:
//   - json: encoding/json, the default
//   - yaml: gopkg.in/yaml.v3
//
// Both share one document layout. Edge values are a union: a plain string is a
// Single target and a list of two or more distinct names is a Parallel target.
// Documents written before parallel edges existed contain only strings and
// decode without a migration step.
package codec
