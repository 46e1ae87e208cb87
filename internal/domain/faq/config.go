package faq

import "time"

// Config holds runtime knobs for the FAQ service.
type Config struct {
	MatchThreshold float64
	FallbackAnswer string
	TopQuestions   int
	CacheTTL       time.Duration
}
