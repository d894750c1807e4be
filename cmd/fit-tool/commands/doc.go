// Package commands implements the fit-tool CLI commands.
package commands
