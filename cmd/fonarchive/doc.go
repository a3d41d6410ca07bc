// Package main hosts the FONarchive CLI entrypoint and command graph.
//
// Running the bare command performs one archive pass: it resolves the font
// cache and archive locations, asks the setup questions, runs the pipeline,
// and prints a summary. The config subcommands scaffold and check the TOML
// configuration. Heavy lifting lives in the internal packages; this package
// only wires flags, prompts, logging, and output together.
package main
