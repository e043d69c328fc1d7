// Package output renders CLI results as a table, JSON or YAML.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: field/value tables via text/tabwriter
//   - json.go, yaml.go: machine-readable output for scripting
package output
