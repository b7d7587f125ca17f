package models

// Feed message types.
const (
	FeedTypeSignal = "signal"
	FeedTypeError  = "error"
)

// FeedMessage is one frame of the live signal feed.
type FeedMessage struct {
	Type           string          `json:"type"`
	Ticker         string          `json:"ticker"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Error          string          `json:"error,omitempty"`
}
