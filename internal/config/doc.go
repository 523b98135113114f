// Package config defines Loom's declarative configuration.
//
// # Overview
//
// Config is loaded in three layers: built-in defaults, an optional JSON
// file, and a LOOM_* environment overlay applied last. The CLI resolves
// flags on top of the result.
package config
