// Package cli holds the terminal side of codeassist: user-facing error
// types with actionable guidance, the Console progress reporter, the
// readline Prompter used by the interactive sign-in, and a kubectl-style
// table writer.
package cli
