package minerva

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/net/html"

	"minerva-archive/lib/htmlutil"
	"minerva-archive/lib/textutil"
)

// Section is one labeled table of a detail page, rendered to text.
type Section struct {
	Label   string
	Content string
}

// LineItem is one row of an expense summary table. Kind tells items
// apart from the running total rows mixed into the same table. All
// amounts stay strings, the upstream formats them inconsistently and
// the archive keeps them verbatim.
type LineItem struct {
	Order            int
	Kind             string
	ItemNo           string
	TransDate        string
	Description      string
	TransAmount      string
	NonMcExpense     string
	AllowableExpense string
	Currency         string
	ExchRate         string
	CadAmount        string
	Label            string
}

const (
	LINE_KIND_ITEM  = "item"
	LINE_KIND_TOTAL = "total"
)

const detailHeading = "Request for Expense Reimbursement"

var wantedSections = []string{
	"paid to and requested by responsible mcgill person",
	"payment information",
	"summary of expenses",
	"foapal distribution",
	"approval information",
}

// ExtractSections pulls the recognized tables of a detail page as
// labeled text blocks, in document order. When none of the known
// section names match it falls back to dumping the first few tables,
// and a page without any tables yields a single placeholder section.
func ExtractSections(content string) []Section {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}
	tables := findDetailTables(root)

	var sections []Section
	for _, tbl := range tables {
		label := displayLabel(root, tbl)
		if !sectionWanted(label, htmlutil.Text(tbl)) {
			continue
		}
		sections = append(sections, Section{
			Label:   label,
			Content: sectionContent(tbl),
		})
	}

	if len(sections) == 0 {
		limit := min(len(tables), 5)
		for _, tbl := range tables[:limit] {
			sections = append(sections, Section{
				Label:   displayLabel(root, tbl),
				Content: sectionContent(tbl),
			})
		}
	}
	if len(sections) == 0 {
		sections = append(sections, Section{Label: "(no tables found)"})
	}
	return sections
}

// ExtractLineItems pulls structured rows out of the expense summary
// tables of a detail page. Columns are mapped by header aliases and
// fall back to fixed positions when a header is missing.
func ExtractLineItems(content string) []LineItem {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var items []LineItem
	for _, tbl := range findDetailTables(root) {
		label := displayLabel(root, tbl)
		if !sectionWanted(label, htmlutil.Text(tbl)) {
			continue
		}
		if !strings.Contains(textutil.NormalizeName(label), "summaryofexpenses") {
			continue
		}
		items = append(items, summaryItems(tbl, label)...)
	}
	return items
}

// FormatSections renders sections the way the archived .txt files
// store them.
func FormatSections(sections []Section) string {
	var b strings.Builder
	for _, s := range sections {
		if s.Content == "" {
			b.WriteString(s.Label)
			b.WriteString("\n")
			continue
		}
		b.WriteString(fmt.Sprintf("=== %s ===\n", s.Label))
		b.WriteString(s.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// tables under the parent of the heading's text node, or every table
// in the document when the heading is absent
func findDetailTables(root *html.Node) []*html.Node {
	heading := findTextNode(root, strings.ToLower(detailHeading))
	if heading != nil && heading.Parent != nil {
		tables := findElements(heading.Parent, "table")
		if len(tables) > 0 {
			return tables
		}
	}
	return findElements(root, "table")
}

func findTextNode(root *html.Node, lowerPhrase string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil || found != nil {
			return
		}
		if n.Type == html.TextNode && strings.Contains(strings.ToLower(n.Data), lowerPhrase) {
			found = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return found
}

// matching descendants of root in document order, root itself excluded
func findElements(root *html.Node, name string) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == name && n != root {
			out = append(out, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return out
}

func sectionWanted(label string, text string) bool {
	normLabel := textutil.NormalizeName(label)
	normText := textutil.NormalizeName(text)
	for _, key := range wantedSections {
		k := textutil.NormalizeName(key)
		if strings.Contains(normLabel, k) || strings.Contains(normText, k) {
			return true
		}
	}
	return false
}

func displayLabel(root *html.Node, tbl *html.Node) string {
	label := strings.TrimSpace(tableLabel(root, tbl))
	if label == "" {
		return "Table"
	}
	return label
}

// tableLabel infers a human-friendly label for a table from nearby
// content: its caption, then the closest preceding sibling with text,
// then the closest preceding heading-like element, then the table's
// own first row.
func tableLabel(root *html.Node, tbl *html.Node) string {
	captions := findElements(tbl, "caption")
	if len(captions) > 0 {
		if text := htmlutil.Text(captions[0]); text != "" {
			return text
		}
	}

	prev := tbl.PrevSibling
	for steps := 0; prev != nil && steps < 5; steps++ {
		if text := htmlutil.Text(prev); text != "" {
			return text
		}
		prev = prev.PrevSibling
	}

	for _, name := range []string{"h1", "h2", "h3", "h4", "strong", "b"} {
		heading := htmlutil.LastBefore(root, tbl, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == name
		})
		if heading != nil {
			if text := htmlutil.Text(heading); text != "" {
				return text
			}
		}
	}

	if rows := findElements(tbl, "tr"); len(rows) > 0 {
		return htmlutil.Text(rows[0])
	}
	return "table"
}

func sectionContent(tbl *html.Node) string {
	text := tableText(tbl)
	if text == "" {
		return "(table empty)"
	}
	return text
}

// tableText renders a table's cells into an aligned text grid.
func tableText(tbl *html.Node) string {
	rows := tableRows(tbl)
	if len(rows) == 0 {
		return ""
	}

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	if tableHasHeaderRow(tbl) {
		w.AppendHeader(prettyRow(rows[0]))
		rows = rows[1:]
	}
	for _, r := range rows {
		w.AppendRow(prettyRow(r))
	}
	return w.Render()
}

func prettyRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func tableHasHeaderRow(tbl *html.Node) bool {
	rows := findElements(tbl, "tr")
	if len(rows) == 0 {
		return false
	}
	return len(findElements(rows[0], "th")) > 0
}

// one entry per tr, cells in document order, spacer rows kept as a
// single blank cell
func tableRows(tbl *html.Node) [][]string {
	var rows [][]string
	for _, tr := range findElements(tbl, "tr") {
		cells := findCells(tr)
		if len(cells) == 0 {
			rows = append(rows, []string{""})
			continue
		}
		row := make([]string, 0, len(cells))
		for _, c := range cells {
			row = append(row, htmlutil.Text(c))
		}
		rows = append(rows, row)
	}
	return rows
}

func findCells(tr *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "th" || n.Data == "td") && n != tr {
			out = append(out, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(tr)
	return out
}

func tableHeaders(tbl *html.Node) []string {
	var headers []string
	for _, th := range findElements(tbl, "th") {
		headers = append(headers, normalizeHeader(htmlutil.Text(th)))
	}
	return headers
}

func normalizeHeader(s string) string {
	return strings.ToLower(textutil.CollapseSpace(s))
}

// column aliases for the expense summary tables, in positional order
// for the header-less fallback
var summaryColumns = []struct {
	key     string
	aliases []string
}{
	{"item_no", []string{"item #", "item"}},
	{"trans_date", []string{"trans. date", "trans date", "transaction date"}},
	{"description", []string{"description"}},
	{"trans_amount", []string{"trans. amount $", "trans amount $", "trans. amount"}},
	{"non_mc_expense", []string{"non-mcgill expense", "non mcgill expense"}},
	{"allowable_expense", []string{"allowable expenses", "allowable expense"}},
	{"currency", []string{"curr.", "currency"}},
	{"exch_rate", []string{"exch. rate", "exchange rate"}},
	{"cad_amount", []string{"expenses cad $", "cad $", "cad"}},
}

func summaryItems(tbl *html.Node, label string) []LineItem {
	headers := tableHeaders(tbl)
	rows := tableRows(tbl)

	colIndex := map[string]int{}
	for _, col := range summaryColumns {
		for _, alias := range col.aliases {
			if idx := slices.Index(headers, alias); idx >= 0 {
				colIndex[col.key] = idx
				break
			}
		}
	}

	get := func(row []string, key string) string {
		if idx, ok := colIndex[key]; ok && idx < len(row) {
			return row[idx]
		}
		for pos, col := range summaryColumns {
			if col.key == key {
				if pos < len(row) {
					return row[pos]
				}
				break
			}
		}
		return ""
	}

	var items []LineItem
	for i, row := range rows {
		if len(headers) > 0 && rowAllHeaders(row, headers) {
			continue
		}
		if rowAllBlank(row) {
			continue
		}

		kind := LINE_KIND_ITEM
		first := normalizeHeader(row[0])
		if strings.HasPrefix(first, "total") ||
			strings.Contains(first, "grand total") ||
			strings.Contains(first, "due to claimant") {
			kind = LINE_KIND_TOTAL
		}

		items = append(items, LineItem{
			Order:            i,
			Kind:             kind,
			ItemNo:           get(row, "item_no"),
			TransDate:        get(row, "trans_date"),
			Description:      get(row, "description"),
			TransAmount:      get(row, "trans_amount"),
			NonMcExpense:     get(row, "non_mc_expense"),
			AllowableExpense: get(row, "allowable_expense"),
			Currency:         get(row, "currency"),
			ExchRate:         get(row, "exch_rate"),
			CadAmount:        get(row, "cad_amount"),
			Label:            label,
		})
	}
	return items
}

func rowAllHeaders(row []string, headers []string) bool {
	for _, cell := range row {
		if !slices.Contains(headers, normalizeHeader(cell)) {
			return false
		}
	}
	return true
}

func rowAllBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
