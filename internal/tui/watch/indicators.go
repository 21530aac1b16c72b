package watch

import (
	"strings"
	"time"
)

// Spinner shows update activity with a decaying dot pattern.
// Lights up on updates, fades over time.
type Spinner struct {
	dots       int
	lastUpdate time.Time
}

func NewSpinner() Spinner {
	return Spinner{}
}

func (s *Spinner) OnUpdate() {
	s.dots = 5
	s.lastUpdate = time.Now()
}

// Decay fades the spinner dots based on time since the last update.
func (s *Spinner) Decay() {
	if s.dots == 0 {
		return
	}
	elapsed := time.Since(s.lastUpdate)
	switch {
	case elapsed > 10*time.Second:
		s.dots = 0
	case elapsed > 8*time.Second:
		s.dots = 1
	case elapsed > 6*time.Second:
		s.dots = 2
	case elapsed > 4*time.Second:
		s.dots = 3
	case elapsed > 2*time.Second:
		s.dots = 4
	}
}

func (s Spinner) Render(theme Theme) string {
	var result strings.Builder
	for i := 0; i < 5; i++ {
		if i < s.dots {
			result.WriteString(theme.TickerActive.Render("●"))
		} else {
			result.WriteString(theme.TickerInactive.Render("○"))
		}
	}
	return result.String()
}
