// Package plasticcli wraps the Plastic SCM command-line tool (cm).
//
// It resolves which cm executable to run, validates user-supplied executable
// paths, invokes cm subcommands through execshell, and parses their
// line-oriented output into RepositoryRef and ChangesetRecord values. Parsers
// expose their skip decisions as lazy sequences so that the tolerance for
// headers, blank lines, and malformed rows stays observable in tests.
package plasticcli
