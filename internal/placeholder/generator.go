package placeholder

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"

	"fieldextract/internal/port"
)

var firstNumber = regexp.MustCompile(`\d+`)

// Generator produces placeholder delivery-challan fields. Values are derived
// from the document name, so the same name always yields the same fields;
// "Document Date" is the only field that follows the clock.
type Generator struct {
	clock port.Clock
}

// New creates a Generator.
func New(clk port.Clock) *Generator {
	return &Generator{clock: clk}
}

// Generate returns placeholder values for fieldNames, or the full template when
// fieldNames is empty. Unknown fields get "Sample <field>".
func (g *Generator) Generate(documentName string, fieldNames []string) map[string]any {
	if documentName == "" {
		documentName = "unknown.pdf"
	}
	template := g.template(documentName)
	if len(fieldNames) == 0 {
		return template
	}
	out := make(map[string]any, len(fieldNames))
	for _, f := range fieldNames {
		if v, ok := template[f]; ok {
			out[f] = v
		} else {
			out[f] = "Sample " + f
		}
	}
	return out
}

func (g *Generator) template(name string) map[string]any {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	number := firstNumber.FindString(name)
	if number == "" {
		number = strconv.FormatUint(seed%1000, 10)
	}

	taxable := round2(rng.Float64()*50000 + 10000)
	taxRate := 18.0
	tax := round2(taxable * taxRate / 100)

	return map[string]any{
		"Document Number":     fmt.Sprintf("FBA15K%sN1JKF", number),
		"Document Date":       g.clock.Now().Format("2006-01-02"),
		"FBA Shipment ID":     fmt.Sprintf("FBA15K%sN1JKF", number),
		"Purpose of transfer": "Stock Transfer",
		"Number of box":       rng.IntN(20) + 1,
		"Supplier Name":       "AI Enterprises",
		"Supplier Address":    "1043 K-1 Ward No.8, Mehrauli New Delhi - 110030",
		"Supplier GSTIN":      "07BLZPA4905P1ZF",
		"Ship To":             "Amazon Seller Services Private Limited",
		"Ship To Address":     "ESR Sohna Logistics Park, Village Rahaka, HARYANA",
		"Ship To GSTIN":       "06BLZPA4905P1ZH",
		"Place of supply":     "HARYANA (State/UT Code: 6)",
		"Place of delivery":   "HARYANA (State/UT Code: 6)",
		"productDescription":  "Sample Product " + number,
		"quantity":            rng.IntN(100) + 1,
		"unitValue":           round2(rng.Float64()*1000 + 100),
		"hsnSacCode":          "8301",
		"taxableValue":        taxable,
		"taxRate":             taxRate,
		"taxValue":            tax,
		"totalValue":          round2(taxable + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
