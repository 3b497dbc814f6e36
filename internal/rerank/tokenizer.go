package rerank

import "github.com/pkoukk/tiktoken-go"

// TiktokenCounter adapts tiktoken-go's BPE encoder to the Tokenizer
// interface, grounded on kadirpekel/hector's use of pkoukk/tiktoken-go for
// per-model token budgeting.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter builds a counter for encoding (e.g. "cl100k_base") and
// returns the error if the encoding can't be loaded. Count on a nil counter
// falls back to a conservative length/4 estimate.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count implements Tokenizer.
func (t *TiktokenCounter) Count(text string) int {
	if t == nil || t.enc == nil {
		return len(text) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}
