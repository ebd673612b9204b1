// Package render turns an explorer snapshot into text for a terminal
// host. It is a reference consumer of the rendering contract: each
// snapshot is rendered from scratch, using one of the mutually exclusive
// modes (loading / error / empty / populated tree).
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/justyntemme/arbor/internal/explorer"
)

// Options controls presentation details that are not part of the state.
type Options struct {
	ShowHidden bool
}

var (
	dirStyle      = color.New(color.FgBlue, color.Bold)
	hiddenStyle   = color.New(color.Faint)
	errStyle      = color.New(color.FgRed)
	loadingStyle  = color.New(color.Faint)
	selectedStyle = color.New(color.FgGreen, color.Bold)
)

// Tree writes one snapshot. Each call clears nothing: the host decides
// how to repaint; this just emits the current mode.
func Tree(w io.Writer, s explorer.ViewState, opts Options) {
	visible := filterHidden(s.Entries, opts.ShowHidden)

	switch {
	case s.Loading:
		loadingStyle.Fprintln(w, "loading…")
	case s.Err != "":
		errStyle.Fprintf(w, "error: %s\n", s.Err)
	case len(visible) == 0:
		loadingStyle.Fprintln(w, "(empty)")
	default:
		for _, en := range visible {
			writeRow(w, s, en)
		}
	}
}

func writeRow(w io.Writer, s explorer.ViewState, en explorer.Entry) {
	indent := strings.Repeat("  ", depthOf(s.CurrentPath, en.Path))

	marker := " "
	if en.Path == s.SelectedPath {
		marker = selectedStyle.Sprint(">")
	}

	switch {
	case en.IsDir && s.Expanded[en.Path]:
		fmt.Fprintf(w, "%s %s▾ %s\n", marker, indent, dirStyle.Sprint(en.Name))
	case en.IsDir:
		fmt.Fprintf(w, "%s %s▸ %s\n", marker, indent, dirStyle.Sprint(en.Name))
	case en.IsHidden:
		fmt.Fprintf(w, "%s %s  %s  %s\n", marker, indent, hiddenStyle.Sprint(en.Name), humanize.Bytes(uint64(en.Size)))
	default:
		fmt.Fprintf(w, "%s %s  %s  %s\n", marker, indent, en.Name, humanize.Bytes(uint64(en.Size)))
	}
}

// filterHidden drops dotfile entries and everything beneath a dotfile
// directory. Entries arrive depth-first so a hidden parent is always seen
// before its children.
func filterHidden(entries []explorer.Entry, showHidden bool) []explorer.Entry {
	if showHidden {
		return entries
	}

	out := make([]explorer.Entry, 0, len(entries))
	var skipPrefix string
	for _, en := range entries {
		if skipPrefix != "" && strings.HasPrefix(en.Path, skipPrefix) {
			continue
		}
		skipPrefix = ""
		if en.IsHidden {
			if en.IsDir {
				skipPrefix = en.Path + "/"
			}
			continue
		}
		out = append(out, en)
	}
	return out
}

// depthOf returns the nesting level of p below the current view root.
func depthOf(current, p string) int {
	rel := p
	if current != "" {
		rel = strings.TrimPrefix(p, current+"/")
	}
	return strings.Count(rel, "/")
}
