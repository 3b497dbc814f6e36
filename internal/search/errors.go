package search

import "errors"

// ErrNoSearchRequests is returned when the search step's response contains
// no parseable (tool, query) requests; the loop treats this as "nothing
// more to look up" and stops early rather than looping on empty input.
var ErrNoSearchRequests = errors.New("search: no requests parsed from LLM response")
