package minerva

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"minerva-archive/lib/htmlutil"
	"minerva-archive/lib/textutil"
)

// Row is one actionable entry on the list page. Live element handles
// are not part of it, a row is addressed by its index into a fresh
// ListRows result and goes stale with the snapshot it came from.
type Row struct {
	Index        int
	RequestDate  string
	StartDate    string
	ReferenceNum string
	QueueTitle   string
}

// ListRows finds every row-control whose label matches the activation
// marker (case-insensitive, whitespace-tolerant) and pulls the
// labeling fields next to it. Each call parses content from scratch.
// A shorter result than last time means the upstream list re-rendered
// smaller, not that something failed.
func ListRows(content string, m Markers) []Row {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	root := doc.Get(0)
	label := strings.ToLower(textutil.CollapseSpace(m.ActivationLabel))

	var rows []Row
	doc.Find("input").Each(func(i int, sel *goquery.Selection) {
		node := sel.Get(0)
		if !isActivationControl(node, label) {
			return
		}
		row := extractFields(root, node)
		row.Index = len(rows)
		rows = append(rows, row)
	})
	return rows
}

func isActivationControl(node *html.Node, label string) bool {
	if label == "" {
		return false
	}
	if !strings.EqualFold(htmlutil.Attr(node, "type"), "button") {
		return false
	}
	value := strings.ToLower(textutil.CollapseSpace(htmlutil.Attr(node, "value")))
	return strings.Contains(value, label)
}

// the labeling fields sit in data cells following the control at fixed
// offsets: 1 request date, 3 start date, 5 reference number, whose
// title attribute carries the queue title. offsets past the end of
// whatever cells exist come back empty.
func extractFields(root *html.Node, control *html.Node) Row {
	cells := htmlutil.FollowingNodes(root, control, 7, isDataCell)

	var row Row
	if len(cells) > 1 {
		row.RequestDate = htmlutil.Text(cells[1])
	}
	if len(cells) > 3 {
		row.StartDate = htmlutil.Text(cells[3])
	}
	if len(cells) > 5 {
		row.ReferenceNum = htmlutil.Text(cells[5])
		row.QueueTitle = textutil.CollapseSpace(htmlutil.Attr(cells[5], "title"))
	}
	return row
}

func isDataCell(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "td" &&
		strings.Contains(htmlutil.Attr(n, "class"), "dddefault")
}

const upperAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const lowerAlpha = "abcdefghijklmnopqrstuvwxyz"

// RowControlXPath matches the live controls ListRows counts, so an
// index into a parsed snapshot lines up with the clickable elements.
func RowControlXPath(label string) string {
	return fmt.Sprintf(
		"//input[@type='button' and contains(translate(normalize-space(@value),'%s','%s'),'%s')]",
		upperAlpha, lowerAlpha, strings.ToLower(textutil.CollapseSpace(label)),
	)
}

// ResubmitXPath matches the search-form resubmission control in
// either its @type or @value spelling.
const ResubmitXPath = "//input[(translate(@type,'SUBMIT','submit')='submit' or contains(translate(@value,'submit','SUBMIT'),'SUBMIT'))]"
