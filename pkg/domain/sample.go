package domain

// SampleText is the built-in diagram every fresh session starts from.
// It doubles as a living reference for the textual notation.
const SampleText = `// Example income statement
Revenue [400] Cost of Goods Sold
Revenue [600] Gross Profit
Gross Profit [250] Operating Expenses
Gross Profit [350] Net Profit #2e7d32
`

// SampleData returns the structural form of SampleText. It is built by
// hand rather than parsed so the domain package keeps zero dependencies
// on the codec.
func SampleData() SankeyData {
	revenue := NewNode("Revenue")
	cogs := NewNode("Cost of Goods Sold")
	gross := NewNode("Gross Profit")
	opex := NewNode("Operating Expenses")
	net := NewNode("Net Profit")
	return SankeyData{
		Nodes: []Node{revenue, cogs, gross, opex, net},
		Links: []Link{
			{Source: revenue.ID, Target: cogs.ID, Value: 400},
			{Source: revenue.ID, Target: gross.ID, Value: 600},
			{Source: gross.ID, Target: opex.ID, Value: 250},
			// Trailing color on a flow line styles the link.
			{Source: gross.ID, Target: net.ID, Value: 350, Color: "#2e7d32"},
		},
		RawLines: []RawLine{{Index: 0, Text: "// Example income statement"}},
	}
}

// SampleState assembles the full initial aggregate.
func SampleState() *DiagramState {
	s := NewDiagramState()
	s.Data = SampleData()
	s.DSLText = SampleText
	return s
}
