// Package utils holds the ambient helpers shared by the plastic-deck commands:
// the Viper configuration loader, the zap logger factory, struct validation,
// and small command context and output utilities.
package utils
