/*
Package dsl implements the line-oriented textual notation for flume
diagrams and its bidirectional conversion to domain.SankeyData.

The grammar is newline-delimited:

	// comment lines and blank lines are preserved on serialization
	:Node Name #ff9900 .revenue        node declaration (color, category)
	Source [120] Target                flow line
	Source [120] Target #0066cc        flow line with color
	Source [120] Target {95, vs. Q1}   flow line with comparison
	labelmove Node Name 12, -30        label offset override

Parsing is tolerant: a malformed line produces a line-scoped Diagnostic
and parsing continues with the next line. Serialization normalizes
whitespace and color formatting (3-digit hex expands to 6-digit), so
Parse(Serialize(d)) is semantically equal to d without being
byte-identical to the original input.
*/
package dsl
