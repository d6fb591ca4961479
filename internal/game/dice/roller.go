package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source so every draw leaves a debug-level audit
// trail. It satisfies Source and can stand in anywhere a bare source is
// accepted.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
func (s *LoggedSource) Intn(n int) int {
	v := s.src.Intn(n)
	s.logger.Debug("dice roll",
		zap.Int("sides", n),
		zap.Int("result", v+1),
	)
	return v
}
