// Package cli builds the plastic-deck command-line interface. It loads layered
// configuration, creates the zap logger, and mounts the Plastic SCM commands
// from internal/commands beneath a single cobra root command.
package cli
