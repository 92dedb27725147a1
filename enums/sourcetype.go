package enums

type SourceType string

const (
	SourceTypeInvalid SourceType = ""

	// SourceTypeRSS fetches an RSS or Atom feed from the source's list URL.
	SourceTypeRSS SourceType = "RSS"

	// SourceTypeHTMLList scrapes a notice list page with configurable selectors.
	SourceTypeHTMLList SourceType = "HTML_LIST"

	// SourceTypeHTMLDetail behaves like HTML_LIST but always follows each
	// item's own page for the body text.
	SourceTypeHTMLDetail SourceType = "HTML_DETAIL"

	// SourceTypeAPI is reserved. Running an API source is an error.
	SourceTypeAPI SourceType = "API"
)

func ParseSourceType(s string) SourceType {
	switch SourceType(s) {
	case SourceTypeRSS, SourceTypeHTMLList, SourceTypeHTMLDetail, SourceTypeAPI:
		return SourceType(s)
	}
	return SourceTypeInvalid
}
