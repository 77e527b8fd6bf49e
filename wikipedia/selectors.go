package wikipedia

// Selectors defines where the title and table of contents live in an article
// page. Wikipedia has rendered the contents box differently across skins, so
// each strategy has its own selector.
type Selectors struct {
	// Title is tried first; the first h1 on the page is the fallback.
	Title string

	// LegacyTOC is the contents box of the classic skins, with
	// span.tocnumber and span.toctext inside every link.
	LegacyTOC string

	// VectorTOC matches the list items of the Vector 2022 sidebar contents.
	VectorTOC string

	// Content is the article body whose headings are read when no contents
	// box is present (short articles, mobile pages).
	Content string

	// Ignore matches containers whose headings are not article sections.
	Ignore string
}

// DefaultSelectors returns the selectors for current and legacy Wikipedia
// markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Title:     "h1#firstHeading",
		LegacyTOC: "div#toc, div.toc",
		VectorTOC: "#vector-toc li.vector-toc-list-item",
		Content:   "#mw-content-text",
		Ignore:    ".navbox, .toc, #toc, #vector-toc, .mw-references-wrap",
	}
}
