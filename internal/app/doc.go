// Package app ties the CLI configuration, the logger and the workflow
// together into a runnable application.
package app
