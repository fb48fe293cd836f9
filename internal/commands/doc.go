// Package commands exposes the Plastic SCM operations to callers.
//
// Surface is the Go API a desktop shell binds to: each operation takes a JSON-tagged
// request, and Invoke dispatches by operation name while flattening failures to the
// plain error text a frontend displays. CommandBuilder wires the same operations into
// cobra subcommands that print JSON or YAML.
package commands
