package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	node, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return node
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil || found != nil {
			return
		}
		if n.Type == html.ElementNode && Attr(n, "id") == id {
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

func TestText(t *testing.T) {
	root := parse(t, `<div>  hello
		<b>big</b>   world </div>`)
	require.Equal(t, "hello big world", Text(root))
}

func TestFollowingNodes(t *testing.T) {
	root := parse(t, `
		<table>
			<tr>
				<td class="dddefault">before</td>
				<td><input id="btn" type="button" value="View"></td>
				<td class="dddefault">a</td>
				<td class="dddefault">b</td>
			</tr>
			<tr>
				<td class="dddefault">c</td>
				<td class="dddefault">d</td>
			</tr>
		</table>`)
	start := findByID(root, "btn")
	require.NotNil(t, start)

	cells := FollowingNodes(root, start, 3, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "td" &&
			strings.Contains(Attr(n, "class"), "dddefault")
	})
	require.Len(t, cells, 3)
	require.Equal(t, "a", Text(cells[0]))
	require.Equal(t, "b", Text(cells[1]))
	require.Equal(t, "c", Text(cells[2]))
}

func TestLastBefore(t *testing.T) {
	root := parse(t, `
		<div>
			<h2>first</h2>
			<p>noise</p>
			<h2>second</h2>
			<table id="target"><tr><td>x</td></tr></table>
			<h2>after</h2>
		</div>`)
	stop := findByID(root, "target")
	require.NotNil(t, stop)

	heading := LastBefore(root, stop, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h2"
	})
	require.NotNil(t, heading)
	require.Equal(t, "second", Text(heading))

	missing := LastBefore(root, stop, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h6"
	})
	require.Nil(t, missing)
}
