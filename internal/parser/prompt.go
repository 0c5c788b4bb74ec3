package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildInstructions returns the standing instructions for the shared
// extraction template. Each job message repeats the fields it needs, so one
// template serves requests with different field lists.
func BuildInstructions(fieldNames []string) string {
	var b strings.Builder
	b.WriteString("Extract invoice data as a JSON array. Each object is one line item.\n\n")
	if len(fieldNames) > 0 {
		fields, _ := json.Marshal(fieldNames)
		fmt.Fprintf(&b, "Default fields: %s\n\n", fields)
	}
	b.WriteString(`Rules:
- Use the exact field names listed in each request
- If a request lists no fields, extract every field you can identify
- Missing values: "" for strings, 0 for numbers
- Include document-level data in each line item
- Return only the JSON array, no explanations

Format:
[{"field1":"value1","field2":"value2"}]`)
	return b.String()
}

// BuildJobMessage returns the per-document message sent with the uploaded file.
func BuildJobMessage(documentName string, fieldNames []string, areaHint json.RawMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract data from: %s", documentName)
	if len(fieldNames) > 0 {
		fields, _ := json.Marshal(fieldNames)
		fmt.Fprintf(&b, "\n\nRequired fields: %s", fields)
	}
	if hint := strings.TrimSpace(string(areaHint)); hint != "" && hint != "null" {
		fmt.Fprintf(&b, "\n\nFocus on this area of the document: %s", hint)
	}
	return b.String()
}
