// Package core packages a compiled contract artifact into a JavaScript module
// and its TypeScript declaration.
//
// # Flow
//
// Every run is linear: Load -> Render -> Persist.
//
//  1. Load reads the artifact verbatim (optionally normalized).
//  2. Render embeds it in an escaped string literal and produces the
//     declaration, which never depends on the artifact content.
//  3. Persist writes the module first and the declaration second, each through
//     a temp file and rename.
//
// # Design Principles
//
//  1. Same input, same output: no timestamps, no map iteration, no host data.
//  2. The artifact is opaque: nothing is validated unless a ContentVerifier is
//     configured by the caller.
//  3. No rollback: a module written before a failed declaration write stays.
//  4. Directories are never created; the caller owns the layout.
package core
