// Package main hosts the titlemark CLI entrypoint and command graph.
//
// The Cobra-based command tree discovers beatmap files, runs the title marker
// checks, renders diagnostics, and manages the run history and configuration
// file. It centralizes configuration resolution and logger setup so
// subcommands can focus on output instead of wiring.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it through dedicated commands or flags here.
package main
