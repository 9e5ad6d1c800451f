package generate

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent as the system message of every completion.
const SystemPrompt = "You are a helpful product support assistant for PartSelect."

// ClosingLine ends every generated answer. It contains no denylisted phrase.
const ClosingLine = "Is there anything else I can help you with today?"

// Fallback template pieces.
const (
	fallbackGreeting = "I found some relevant parts that might help with your query: \"%s\"."
	fallbackClosing  = "To order any of these parts or get more information, please use the part number provided. " +
		"Each part comes with detailed installation instructions, and some parts include video guides for installation."
)

// BuildPrompt renders the user message: both context blocks, the question and the
// strict answer skeleton.
func BuildPrompt(query, partsContext, repairContext string) string {
	var b strings.Builder

	b.WriteString("Answer the customer's question using only the context below. ")
	b.WriteString("If the context does not cover it, say so plainly.\n\n")

	b.WriteString("Repair context:\n")
	b.WriteString(repairContext)
	b.WriteString("\n\nParts context:\n")
	b.WriteString(partsContext)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Customer question: %s\n\n", query)

	b.WriteString("Reply in exactly this format and nothing else:\n")
	b.WriteString("1. One greeting line, naming the most relevant part and its part number when there is one.\n")
	b.WriteString("2. Between 1 and 5 bullet points starting with \"- \", each addressed directly to the customer " +
		"(\"you\", \"your\") with a concrete step, part or fact.\n")
	fmt.Fprintf(&b, "3. This closing line, verbatim: %s\n\n", ClosingLine)
	b.WriteString("Do not show your reasoning, plans or self-talk. Do not add headings or extra sections.")

	return b.String()
}

// Compose is the deterministic answer used when generation fails:
// greeting, repair block, parts block and closing, separated by blank lines.
func Compose(query, partsContext, repairContext string) string {
	return strings.Join([]string{
		fmt.Sprintf(fallbackGreeting, query),
		repairContext,
		partsContext,
		fallbackClosing,
	}, "\n\n")
}
