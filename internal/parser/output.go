package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"fieldextract/internal/domain"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n?(.*?)```")

// ParseLineItems extracts line items from model output. It accepts a bare
// JSON array, an array inside a fenced code block, or the first well-formed
// array embedded in prose. A bare or fenced JSON object counts as one line item.
func ParseLineItems(text string, fieldNames []string) ([]map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyOutput
	}

	var candidates []string
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, text)

	var lastErr error
	for _, c := range candidates {
		items, err := decodeItems(c, fieldNames)
		if err == nil {
			return items, nil
		}
		lastErr = err
	}

	for start := strings.IndexByte(text, '['); start >= 0; {
		end := matchBracket(text, start)
		if end < 0 {
			break
		}
		items, err := decodeItems(text[start:end+1], fieldNames)
		if err == nil {
			return items, nil
		}
		lastErr = err
		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrInvalidOutput, lastErr, truncate(text, 200))
}

func decodeItems(s string, fieldNames []string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		v = []any{obj}
	}
	if err := ValidateLineItems(v, fieldNames); err != nil {
		return nil, err
	}

	arr := v.([]any)
	items := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		items = append(items, el.(map[string]any))
	}
	return items, nil
}

// matchBracket returns the index of the bracket closing the one at start,
// skipping brackets inside JSON strings, or -1 if it is never closed.
func matchBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// BuildRecords names each line item after its source document: "invoice.pdf"
// yields "invoice_1.json", "invoice_2.json" and so on.
func BuildRecords(documentName string, items []map[string]any) []domain.LineItemRecord {
	base := documentName
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	records := make([]domain.LineItemRecord, len(items))
	for i, item := range items {
		records[i] = domain.LineItemRecord{
			Filename: fmt.Sprintf("%s_%d.json", base, i+1),
			Data:     item,
		}
	}
	return records
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
