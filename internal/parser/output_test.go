package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldextract/internal/domain"
	"fieldextract/internal/parser"
)

func TestParseLineItems_BareArray(t *testing.T) {
	items, err := parser.ParseLineItems(`[{"Invoice No":"INV-1","Total":100},{"Invoice No":"INV-1","Total":50}]`, []string{"Invoice No", "Total"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "INV-1", items[0]["Invoice No"])
	assert.Equal(t, float64(50), items[1]["Total"])
}

func TestParseLineItems_FencedBlock(t *testing.T) {
	text := "Here is the data:\n```json\n[{\"a\":\"1\"}]\n```\nLet me know if you need more."
	items, err := parser.ParseLineItems(text, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0]["a"])
}

func TestParseLineItems_FenceWithoutLanguage(t *testing.T) {
	items, err := parser.ParseLineItems("```\n[{\"a\":2}]\n```", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2), items[0]["a"])
}

func TestParseLineItems_ArrayInProse(t *testing.T) {
	text := `I found these items [see below]: [{"desc":"Bolt [M8]","qty":4}] Thanks.`
	items, err := parser.ParseLineItems(text, []string{"desc", "qty"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bolt [M8]", items[0]["desc"])
}

func TestParseLineItems_SingleObject(t *testing.T) {
	items, err := parser.ParseLineItems(`{"Supplier Name":"AI Enterprises"}`, []string{"Supplier Name"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "AI Enterprises", items[0]["Supplier Name"])
}

func TestParseLineItems_EmptyArray(t *testing.T) {
	items, err := parser.ParseLineItems("[]", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseLineItems_Empty(t *testing.T) {
	_, err := parser.ParseLineItems("   \n ", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyOutput)
}

func TestParseLineItems_Unparsable(t *testing.T) {
	_, err := parser.ParseLineItems("I could not read the document.", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidOutput)
}

func TestParseLineItems_UnclosedArray(t *testing.T) {
	_, err := parser.ParseLineItems(`[{"a":1},`, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidOutput)
}

func TestParseLineItems_NonObjectItems(t *testing.T) {
	_, err := parser.ParseLineItems(`[1, 2, 3]`, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidOutput)
}

func TestParseLineItems_NestedFieldValueRejected(t *testing.T) {
	_, err := parser.ParseLineItems(`[{"Total":{"amount":5}}]`, []string{"Total"})
	assert.ErrorIs(t, err, domain.ErrInvalidOutput)
}

func TestBuildRecords(t *testing.T) {
	items := []map[string]any{{"a": 1}, {"a": 2}}

	records := parser.BuildRecords("invoice-7.pdf", items)
	require.Len(t, records, 2)
	assert.Equal(t, "invoice-7_1.json", records[0].Filename)
	assert.Equal(t, "invoice-7_2.json", records[1].Filename)
	assert.Equal(t, 2, records[1].Data["a"])

	assert.Equal(t, "scan_1.json", parser.BuildRecords("scan", items[:1])[0].Filename)
	assert.Equal(t, ".hidden_1.json", parser.BuildRecords(".hidden", items[:1])[0].Filename)
}
