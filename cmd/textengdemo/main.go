// Package main is a minimal demonstration binary for the text engine: it
// opens a file (or an empty buffer) in a tcell screen, wraps it to the
// terminal width, and accepts basic edits. It exists to exercise
// TextBuffer/View/EditBuffer end to end, not as an editor.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/dshills/textengine/internal/editbuffer"
	"github.com/dshills/textengine/internal/style"
	"github.com/dshills/textengine/internal/textbuf"
	"github.com/dshills/textengine/internal/view"
)

func main() {
	os.Exit(run())
}

type options struct {
	file     string
	dump     bool
	wordWrap bool
	debug    bool
}

func parseFlags() options {
	var opts options
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&opts.file, "file", "", "path to a file to load into the buffer")
	fs.BoolVar(&opts.dump, "dump", false, "print a debug snapshot of the buffer's segment structure and exit")
	fs.BoolVar(&opts.wordWrap, "word-wrap", false, "wrap at word boundaries instead of character boundaries")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug-level logging")
	fs.Parse(os.Args[1:])
	return opts
}

func run() int {
	opts := parseFlags()

	level := zerolog.InfoLevel
	if opts.debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	tb := textbuf.New(nil, textbuf.WithTabWidth(4))
	eb := editbuffer.New(tb)
	eb.SetPlaceholder([]byte("start typing…"))

	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", opts.file, err)
			return 1
		}
		if err := eb.SetText(data, false); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", opts.file, err)
			return 1
		}
		log.Info().Str("file", opts.file).Int("bytes", len(data)).Msg("loaded buffer")
	}

	if opts.dump {
		fmt.Println(tb.DebugSnapshot())
		return 0
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; pass -dump to inspect a buffer non-interactively")
		return 1
	}

	v := view.New(tb)
	defer v.Close()
	if opts.wordWrap {
		v.SetWrapMode(view.WrapWord)
	} else {
		v.SetWrapMode(view.WrapChar)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		screen.Fini()
		os.Exit(0)
	}()

	log.Info().Msg("starting demo loop")
	if err := runLoop(screen, tb, eb, v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runLoop drives tcell's event loop: render the view's current virtual
// lines and cursor, dispatch key events to the edit buffer, repeat until
// Esc or Ctrl-C.
func runLoop(screen tcell.Screen, tb *textbuf.TextBuffer, eb *editbuffer.EditBuffer, v *view.View) error {
	w, h := screen.Size()
	width := uint32(w)
	v.SetWrapWidth(&width)

	draw(screen, tb, v, eb)
	for {
		ev := screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventResize:
			w, h = screen.Size()
			width = uint32(w)
			v.SetWrapWidth(&width)
			screen.Sync()
		case *tcell.EventKey:
			if quit := handleKey(e, eb); quit {
				return nil
			}
		}
		draw(screen, tb, v, eb)
		_ = h
	}
}

// handleKey applies a key event to the edit buffer and reports whether the
// demo should exit.
func handleKey(e *tcell.EventKey, eb *editbuffer.EditBuffer) bool {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyEnter:
		_ = eb.InsertText([]byte("\n"))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		_ = eb.Backspace()
	case tcell.KeyLeft:
		c := eb.GetCursor()
		if c.Col > 0 {
			eb.SetCursor(c.Row, c.Col-1)
		}
	case tcell.KeyRight:
		c := eb.GetCursor()
		eb.SetCursor(c.Row, c.Col+1)
	case tcell.KeyUp:
		c := eb.GetCursor()
		if c.Row > 0 {
			eb.SetCursor(c.Row-1, c.Col)
		}
	case tcell.KeyDown:
		c := eb.GetCursor()
		eb.SetCursor(c.Row+1, c.Col)
	case tcell.KeyRune:
		_ = eb.InsertText([]byte(string(e.Rune())))
	}
	return false
}

// draw renders the view's current virtual lines to the screen and places
// the hardware cursor at the edit buffer's logical position.
func draw(screen tcell.Screen, tb *textbuf.TextBuffer, v *view.View, eb *editbuffer.EditBuffer) {
	screen.Clear()
	lines := v.GetVirtualLines()
	for row, vl := range lines {
		col := 0
		for _, chunk := range vl.Chunks {
			st := cellStyle(chunk.Style)
			text := chunkText(tb, chunk)
			for _, r := range text {
				screen.SetContent(col, row, r, nil, st)
				col++
			}
		}
	}
	cur := eb.GetCursor()
	screen.ShowCursor(int(cur.Col), int(cur.Row))
	screen.Show()
}

// cellStyle converts a segment's style to the tcell style it should be
// drawn with; a nil style falls back to the screen default.
func cellStyle(st *style.Style) tcell.Style {
	out := tcell.StyleDefault
	if st == nil {
		return out
	}
	if st.FG != nil {
		r, g, b := st.FG.Colorful().RGB255()
		out = out.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if st.BG != nil {
		r, g, b := st.BG.Colorful().RGB255()
		out = out.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	out = out.Bold(st.Attributes.Has(style.AttrBold))
	out = out.Dim(st.Attributes.Has(style.AttrDim))
	out = out.Italic(st.Attributes.Has(style.AttrItalic))
	out = out.Underline(st.Attributes.Has(style.AttrUnderline))
	out = out.Blink(st.Attributes.Has(style.AttrBlink))
	out = out.Reverse(st.Attributes.Has(style.AttrInverse))
	out = out.StrikeThrough(st.Attributes.Has(style.AttrStrikethrough))
	return out
}

// chunkText resolves a virtual chunk's backing byte range into the runes it
// covers, reading the owning mem buffer directly rather than going back
// through the rope.
func chunkText(tb *textbuf.TextBuffer, chunk view.VirtualChunk) string {
	buf, ok := tb.GetMemBuffer(chunk.MemID)
	if !ok || chunk.ByteEnd > uint32(len(buf)) || chunk.ByteStart > chunk.ByteEnd {
		return ""
	}
	return string(buf[chunk.ByteStart:chunk.ByteEnd])
}
