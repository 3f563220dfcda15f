package scene

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// SVGOptions controls standalone SVG output.
type SVGOptions struct {
	Width      float64
	Height     float64
	Background string
	Stylesheet string
	MountID    string
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      1200,
		Height:     800,
		Background: "#0f1117",
	}
}

// RenderSVG writes the tree at the state held by snap as one SVG document.
func RenderSVG(w io.Writer, t *Tree, snap *Snapshot, opts SVGOptions) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f"`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	if opts.MountID != "" {
		fmt.Fprintf(bw, ` data-mount="%s"`, escapeAttr(opts.MountID))
	}
	bw.WriteString(">\n")

	if opts.Stylesheet != "" {
		bw.WriteString("<style>")
		xml.EscapeText(bw, []byte(opts.Stylesheet))
		bw.WriteString("</style>\n")
	}
	if opts.Background != "" {
		fmt.Fprintf(bw, `<rect x="0" y="0" width="100%%" height="100%%" fill="%s"/>`+"\n", escapeAttr(opts.Background))
	}

	for _, id := range t.Children("") {
		writeNode(bw, t, snap, id, 0)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeNode(w *bufio.Writer, t *Tree, snap *Snapshot, id ID, depth int) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	attrs := snap.attrs[id]
	indent := strings.Repeat("  ", depth)

	fmt.Fprintf(w, `%s<%s id="%s"`, indent, n.Kind, escapeAttr(string(id)))
	for _, k := range sortedKeys(attrs) {
		if k == TextKey {
			continue
		}
		fmt.Fprintf(w, ` %s="%s"`, k, escapeAttr(attrs[k]))
	}

	kids := t.children[id]
	text, hasText := attrs[TextKey]
	if len(kids) == 0 && !hasText {
		w.WriteString("/>\n")
		return
	}
	w.WriteString(">")
	if hasText {
		xml.EscapeText(w, []byte(text))
	}
	if len(kids) > 0 {
		w.WriteString("\n")
		for _, kid := range kids {
			writeNode(w, t, snap, kid, depth+1)
		}
		w.WriteString(indent)
	}
	fmt.Fprintf(w, "</%s>\n", n.Kind)
}

func escapeAttr(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
