package domain

// Document is a single discovery document prepared for prompt assembly.
// RelPath is unique within a run and is the sort key for document ordering.
type Document struct {
	// RelPath is the path of the file relative to the docs root, using
	// forward slashes regardless of platform.
	RelPath string

	// Text is the extracted, whitespace-trimmed content. May be empty.
	Text string
}
