package search

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type searchesXML struct {
	XMLName xml.Name     `xml:"searches"`
	Search  []searchItem `xml:"search"`
}

type searchItem struct {
	Tool     string `xml:"tool,attr"`
	Query    string `xml:"query,attr"`
	Thinking string `xml:"thinking"`
}

// parseSearchRequests extracts the <searches>...</searches> fragment from a
// raw LLM response and unmarshals it into Requests.
func parseSearchRequests(resp string) ([]Request, error) {
	start := strings.Index(resp, "<searches>")
	end := strings.LastIndex(resp, "</searches>")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no <searches> fragment", ErrNoSearchRequests)
	}
	var parsed searchesXML
	if err := xml.Unmarshal([]byte(resp[start:end+len("</searches>")]), &parsed); err != nil {
		return nil, fmt.Errorf("search: parsing <searches>: %w", err)
	}
	requests := make([]Request, 0, len(parsed.Search))
	for _, s := range parsed.Search {
		tool := Tool(strings.ToLower(strings.TrimSpace(s.Tool)))
		if tool != ToolFile && tool != ToolKeyword {
			continue
		}
		requests = append(requests, Request{Tool: tool, Query: s.Query, Thinking: s.Thinking})
	}
	if len(requests) == 0 {
		return nil, ErrNoSearchRequests
	}
	return requests, nil
}

type identifyXML struct {
	XMLName xml.Name       `xml:"identify"`
	Keep    []identifyItem `xml:"keep"`
	Drop    []identifyItem `xml:"drop"`
}

type identifyItem struct {
	Path   string `xml:"path,attr"`
	Reason string `xml:"reason"`
}

// parseIdentifyDecisions extracts the <identify>...</identify> fragment and
// returns the set of file paths the LLM decided to keep.
func parseIdentifyDecisions(resp string) (map[string]bool, error) {
	start := strings.Index(resp, "<identify>")
	end := strings.LastIndex(resp, "</identify>")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("search: no <identify> fragment in response")
	}
	var parsed identifyXML
	if err := xml.Unmarshal([]byte(resp[start:end+len("</identify>")]), &parsed); err != nil {
		return nil, fmt.Errorf("search: parsing <identify>: %w", err)
	}
	kept := make(map[string]bool, len(parsed.Keep))
	for _, k := range parsed.Keep {
		kept[k.Path] = true
	}
	return kept, nil
}

// shouldContinue interprets the free-text decide-step response: the loop
// keeps going unless the response clearly says to stop.
func shouldContinue(resp string) bool {
	return !strings.Contains(strings.ToLower(resp), "stop")
}
