package minerva

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageState is what the session's current content looks like. The
// banner pages all render with http 200 so telling them apart is a
// matter of content signatures, not status codes.
type PageState int

const (
	PAGE_UNCLASSIFIED PageState = iota
	PAGE_LIST
	PAGE_PARENT_MENU
	PAGE_SEARCH_RESULTS
	PAGE_NO_EXACT_MATCHES
	PAGE_UNKNOWN_OPTION
	PAGE_DETAIL
)

func (s PageState) String() string {
	switch s {
	case PAGE_LIST:
		return "list"
	case PAGE_PARENT_MENU:
		return "parent_menu"
	case PAGE_SEARCH_RESULTS:
		return "search_results"
	case PAGE_NO_EXACT_MATCHES:
		return "no_exact_matches"
	case PAGE_UNKNOWN_OPTION:
		return "unknown_option"
	case PAGE_DETAIL:
		return "detail"
	}
	return "unclassified"
}

// Markers holds the content signatures used to classify a rendered
// page. The upstream wording is brittle so none of these are
// hard-coded, they ride along in config with these defaults.
type Markers struct {
	ListTitle       string `json:"list_title"`
	SelectorPrompt  string `json:"selector_prompt"`
	ParentMenu      string `json:"parent_menu"`
	SearchResults   string `json:"search_results"`
	NoExactMatches  string `json:"no_exact_matches"`
	ErrorToken      string `json:"error_token"`
	ErrorText       string `json:"error_text"`
	ActivationLabel string `json:"activation_label"`
}

func DefaultMarkers() Markers {
	return Markers{
		ListTitle:       "View All Requests",
		SelectorPrompt:  "Select Document or Request",
		ParentMenu:      "Advances and Expense Reports Menu",
		SearchResults:   "search results",
		NoExactMatches:  "your search results returned no exact matches",
		ErrorToken:      "*ERROR*",
		ErrorText:       "Unknown option",
		ActivationLabel: "View",
	}
}

func containsMarker(content string, marker string) bool {
	return marker != "" && strings.Contains(content, marker)
}

// Classify inspects rendered content and names the page it shows.
// First match wins, in a fixed order, so content carrying several
// signatures at once still resolves deterministically. It works on
// whatever content is available, a partially loaded page classifies
// like any other.
func Classify(content string, m Markers) PageState {
	if containsMarker(content, m.ListTitle) && containsMarker(content, m.SelectorPrompt) {
		return PAGE_LIST
	}
	if containsMarker(content, m.ParentMenu) {
		return PAGE_PARENT_MENU
	}

	lower := strings.ToLower(content)
	if containsMarker(lower, strings.ToLower(m.SearchResults)) {
		if containsMarker(lower, strings.ToLower(m.NoExactMatches)) {
			return PAGE_NO_EXACT_MATCHES
		}
		return PAGE_SEARCH_RESULTS
	}

	if containsMarker(content, m.ErrorToken) && containsMarker(content, m.ErrorText) {
		return PAGE_UNKNOWN_OPTION
	}

	// a page with clickable controls but no list title is some detail
	// view, anything else gets the most conservative treatment
	if !containsMarker(content, m.ListTitle) && hasActionableControl(content) {
		return PAGE_DETAIL
	}
	return PAGE_UNCLASSIFIED
}

func hasActionableControl(content string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return false
	}
	found := false
	doc.Find("input").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		kind := sel.AttrOr("type", "")
		if strings.EqualFold(kind, "button") || strings.EqualFold(kind, "submit") {
			found = true
			return false
		}
		return true
	})
	return found
}
