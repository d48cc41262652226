package entity

// ActivityRecord is one historical transaction from the block explorer.
type ActivityRecord struct {
	Hash      string  `json:"hash"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Method    string  `json:"method,omitempty"`
	Status    string  `json:"status,omitempty"`
}
