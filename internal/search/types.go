package search

// Match represents a single matching line of a document
type Match struct {
	// Number is the 1-based line number within the document.
	Number int `json:"line" yaml:"line"`
	// Text is the line as it appears in the document, without its terminator.
	Text string `json:"text" yaml:"text"`
}

// Span is a half-open byte range [Start, End) within a line
type Span struct {
	Start int
	End   int
}
