// Package view projects a textbuf.TextBuffer into wrapped virtual lines
// for rendering, and owns the selection state of one client onto that
// buffer. A View registers itself with its TextBuffer on construction and
// recomputes its virtual lines lazily, on first read after the buffer (or
// the view's own wrap settings) changed.
package view
