package port

// PlaceholderGenerator synthesizes stand-in field values for a document.
type PlaceholderGenerator interface {
	Generate(documentName string, fieldNames []string) map[string]any
}
