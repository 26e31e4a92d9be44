package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvard/tavla/internal/models"
)

// WriteSVG serializes a projected node list into an SVG document using
// the given viewbox.
func WriteSVG(nodes []Node, box models.ViewBox) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`,
		fnum(box.X), fnum(box.Y), fnum(box.Width), fnum(box.Height)))
	b.WriteString("\n")
	for _, n := range nodes {
		b.WriteString("  ")
		b.WriteString(renderNode(n))
		b.WriteString("\n")
	}
	b.WriteString("</svg>")
	return b.String()
}

func renderNode(n Node) string {
	attrs := commonAttrs(n)
	switch n.Kind {
	case KindImage:
		return fmt.Sprintf(`<image id=%q x="%s" y="%s" width="%s" height="%s" href=%q%s/>`,
			n.ID, fnum(n.X), fnum(n.Y), fnum(n.Width), fnum(n.Height), n.Href, attrs)
	case KindLine:
		return fmt.Sprintf(`<line id=%q x1="%s" y1="%s" x2="%s" y2="%s"%s/>`,
			n.ID, fnum(n.X), fnum(n.Y), fnum(n.X+n.Width), fnum(n.Y+n.Height), attrs)
	case KindPath:
		return fmt.Sprintf(`<polyline id=%q points=%q fill="none"%s/>`,
			n.ID, pointList(n.Points), attrs)
	case KindText:
		return fmt.Sprintf(`<text id=%q x="%s" y="%s"%s>%s</text>`,
			n.ID, fnum(n.X), fnum(n.Y), attrs, escapeText(n.Text))
	case KindGroupPick:
		// Invisible but pickable: pointer events hit it, nothing paints.
		return fmt.Sprintf(`<rect id=%q x="%s" y="%s" width="%s" height="%s" fill="transparent" stroke="none"/>`,
			n.ID, fnum(n.X), fnum(n.Y), fnum(n.Width), fnum(n.Height))
	default:
		return fmt.Sprintf(`<rect id=%q x="%s" y="%s" width="%s" height="%s"%s/>`,
			n.ID, fnum(n.X), fnum(n.Y), fnum(n.Width), fnum(n.Height), attrs)
	}
}

func commonAttrs(n Node) string {
	var b strings.Builder
	if n.Fill != "" && n.Kind != KindPath {
		fmt.Fprintf(&b, ` fill=%q`, n.Fill)
	}
	if n.Stroke != "" {
		fmt.Fprintf(&b, ` stroke=%q`, n.Stroke)
	}
	if n.StrokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke-width="%s"`, fnum(n.StrokeWidth))
	}
	if n.Transform != "" {
		fmt.Fprintf(&b, ` transform=%q`, n.Transform)
	}
	if n.Filter != "" {
		fmt.Fprintf(&b, ` style="filter: %s"`, n.Filter)
	}
	if n.Font != "" {
		fmt.Fprintf(&b, ` font=%q`, n.Font)
	}
	return b.String()
}

func pointList(pts []models.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fnum(p.X) + "," + fnum(p.Y)
	}
	return strings.Join(parts, " ")
}

func fnum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
