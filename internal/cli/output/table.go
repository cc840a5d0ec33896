package output

import (
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows under header. Text mode draws a box table, other modes
// write a markdown table.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	h := make(table.Row, len(header))
	for i, col := range header {
		h[i] = col
	}
	t.AppendHeader(h)
	for _, cols := range rows {
		row := make(table.Row, len(cols))
		for i, v := range cols {
			row[i] = v
		}
		t.AppendRow(row)
	}

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleLight)
		t.Render()
		return
	}
	t.RenderMarkdown()
}

// TreeItem is one node of a rendered tree.
type TreeItem struct {
	Label    string
	Children []TreeItem
}

// Tree writes nested items as an indented list.
func (r *Renderer) Tree(items []TreeItem) {
	l := list.NewWriter()
	if r.EffectiveMode() == ModeText {
		l.SetStyle(list.StyleConnectedLight)
	} else {
		l.SetStyle(list.StyleMarkdown)
	}
	appendTree(l, items)
	if l.Length() == 0 {
		return
	}
	r.Println(l.Render())
}

func appendTree(l list.Writer, items []TreeItem) {
	for _, item := range items {
		l.AppendItem(item.Label)
		if len(item.Children) > 0 {
			l.Indent()
			appendTree(l, item.Children)
			l.UnIndent()
		}
	}
}
