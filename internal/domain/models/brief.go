package models

import (
	"fmt"
	"strings"
)

// BriefPack is the preformatted retrieval pack the brief generator works
// from. It is built entirely from already-fetched snapshot data plus the
// open task list; the generator itself performs no fetching.
type BriefPack struct {
	Time      string     `json:"time"`
	Pulse     []Quote    `json:"pulse"`
	Headlines []Headline `json:"headlines"`
	Tasks     []Task     `json:"tasks"`
}

// Text renders the pack as the plain-text block handed to the summarizer.
func (p BriefPack) Text() string {
	var b strings.Builder

	b.WriteString("TIME: " + p.Time + "\n\n")

	b.WriteString("MARKET PULSE:\n")
	for _, q := range p.Pulse {
		if q.Available() {
			fmt.Fprintf(&b, "- %s: %.2f (%+.2f%%)\n", q.Label, *q.Value, *q.PercentChange)
		} else {
			fmt.Fprintf(&b, "- %s: N/A\n", q.Label)
		}
	}

	b.WriteString("\nTOP NEWS:\n")
	for _, h := range p.Headlines {
		fmt.Fprintf(&b, "- [%s] %s\n", h.Source, h.Title)
	}

	if len(p.Tasks) > 0 {
		b.WriteString("\nOPEN TASKS:\n")
		for _, t := range p.Tasks {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		}
	}

	return b.String()
}
