package rerank

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

const filterMaxAttempts = 4

// FilterDecision is one snippet's keep/skip verdict with its stated reason.
type FilterDecision struct {
	Span   Span
	Edit   bool
	Reason string
}

type filterXML struct {
	XMLName xml.Name `xml:"decision"`
	Edit    []struct {
		Hash   string `xml:"hash,attr"`
		Reason string `xml:"reason"`
	} `xml:"edit"`
	Skip []struct {
		Hash   string `xml:"hash,attr"`
		Reason string `xml:"reason"`
	} `xml:"skip"`
}

// FilterForEditing implements spec.md §4.F's filter-for-editing tool: ask
// the LLM for an XML-structured decision over candidate spans, retrying up
// to 4 times (alternating caller/fail-over is the broker's concern when
// caller is backed by a retryable completion) if the response fails to
// parse.
func FilterForEditing(ctx context.Context, query string, spans []Span, caller Caller) ([]FilterDecision, error) {
	var lastErr error
	for attempt := 0; attempt < filterMaxAttempts; attempt++ {
		resp, err := caller.Complete(ctx, filterSystemPrompt, filterUserPrompt(query, spans))
		if err != nil {
			lastErr = err
			continue
		}
		decisions, err := parseFilterXML(resp, spans)
		if err != nil {
			lastErr = err
			continue
		}
		return decisions, nil
	}
	return nil, fmt.Errorf("filter-for-editing: exhausted %d attempts: %w", filterMaxAttempts, lastErr)
}

const filterSystemPrompt = "You decide which code snippets are worth editing to satisfy a query. Respond with a single <decision> XML element containing <edit hash=\"...\"><reason>...</reason></edit> and <skip hash=\"...\"><reason>...</reason></skip> children, one per snippet."

func filterUserPrompt(query string, spans []Span) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\n", query)
	for _, s := range spans {
		fmt.Fprintf(&b, "%s (%s):\n%s\n\n", s.Hash, s.FsFilePath, s.Content)
	}
	return b.String()
}

func parseFilterXML(resp string, spans []Span) ([]FilterDecision, error) {
	start := strings.Index(resp, "<decision")
	end := strings.LastIndex(resp, "</decision>")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no <decision> element found in response")
	}
	fragment := resp[start : end+len("</decision>")]

	var parsed filterXML
	if err := xml.Unmarshal([]byte(fragment), &parsed); err != nil {
		return nil, fmt.Errorf("decoding <decision>: %w", err)
	}

	byHash := make(map[string]Span, len(spans))
	for _, s := range spans {
		byHash[s.Hash] = s
	}

	var decisions []FilterDecision
	for _, e := range parsed.Edit {
		if span, ok := byHash[e.Hash]; ok {
			decisions = append(decisions, FilterDecision{Span: span, Edit: true, Reason: e.Reason})
		}
	}
	for _, sk := range parsed.Skip {
		if span, ok := byHash[sk.Hash]; ok {
			decisions = append(decisions, FilterDecision{Span: span, Edit: false, Reason: sk.Reason})
		}
	}
	if len(decisions) == 0 {
		return nil, fmt.Errorf("decision contained no recognized spans")
	}
	return decisions, nil
}
