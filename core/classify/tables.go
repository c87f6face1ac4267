package classify

import (
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// Tables reduces tables to bare table/tr/td/th structure: row groups and
// column definitions disappear, captions move out as paragraphs, and cells
// keep only their span attributes.
type Tables struct{}

// NewTables creates the table classifier.
func NewTables() *Tables { return &Tables{} }

// Name implements core.Stage.
func (t *Tables) Name() string { return "tables" }

// Apply implements core.Stage.
func (t *Tables) Apply(ctx *core.ParseContext) {
	var tables []*html.Node
	for _, el := range tree.Elements(ctx.Root) {
		switch el.Data {
		case "col", "colgroup":
			tree.Detach(el)
		case "thead", "tbody", "tfoot":
			tree.Unwrap(el)
		case "table":
			tables = append(tables, el)
		}
	}
	for _, table := range tables {
		if table.Parent != nil {
			normalizeTable(ctx, table)
		}
	}
}

func normalizeTable(ctx *core.ParseContext, table *html.Node) {
	table.Attr = nil
	for _, c := range tree.ElementChildren(table) {
		if c.Data == "caption" {
			tree.WrapInlineRuns(c, "p")
			for _, b := range tree.Children(c) {
				if b.Type == html.ElementNode {
					tree.Detach(b)
					table.Parent.InsertBefore(b, table)
				}
			}
			tree.Detach(c)
		}
	}

	tree.WrapInlineRuns(table, "p")
	rows := 0
	for _, c := range tree.Children(table) {
		switch {
		case tree.IsElement(c, "tr"):
			normalizeRow(ctx, table, c)
			rows++
		case c.Type == html.ElementNode:
			hoistBefore(ctx, table, c)
		default:
			table.RemoveChild(c)
		}
	}
	if rows == 0 {
		tree.Detach(table)
		ctx.Logger.Debug("removed table without rows")
	}
}

func normalizeRow(ctx *core.ParseContext, table, tr *html.Node) {
	tr.Attr = nil
	tree.WrapInlineRuns(tr, "p")
	for _, c := range tree.Children(tr) {
		switch {
		case tree.IsElement(c, "td", "th"):
			normalizeCell(c)
		case c.Type == html.ElementNode:
			hoistBefore(ctx, table, c)
		default:
			tr.RemoveChild(c)
		}
	}
}

func normalizeCell(cell *html.Node) {
	var kept []html.Attribute
	for _, a := range cell.Attr {
		if a.Namespace == "" && (a.Key == "colspan" || a.Key == "rowspan") {
			kept = append(kept, a)
		}
	}
	cell.Attr = kept
	tree.WrapInlineRuns(cell, "p")
}

// hoistBefore moves content the parser fostered into table structure to just
// before the table.
func hoistBefore(ctx *core.ParseContext, table, n *html.Node) {
	tree.Detach(n)
	if tree.IsBlank(n) {
		return
	}
	table.Parent.InsertBefore(n, table)
	ctx.Warn("Moved <%s> out of table.", n.Data)
}
