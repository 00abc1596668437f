// @focus: #sys { term }
// Package terminal is a small Unix terminal driver speaking xterm-compatible ANSI.
//
// Features:
//   - Raw mode and alternate screen switching with recorded state
//   - Input decoding for UTF-8, control bytes, CSI/SS3 keys with xterm modifiers, SGR mouse
//   - Escape timeout separating a lone ESC from a sequence prefix
//   - Blocking (poll loop) and readiness-based (cancelable) reads
//   - Double-buffered cell renderer with style coalescing
//   - Emergency restoration for crash paths
//
// The package bypasses terminfo entirely. Target environments: Linux, macOS, BSDs.
package terminal
