// Package app contains the application logic behind the projload command. It
// turns a validated Config into a configured loader, runs one load and renders
// the result, decoupled from any specific entrypoint like a CLI.
package app
