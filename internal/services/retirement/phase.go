package retirement

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Phase is a step of the retirement lifecycle
type Phase int

const (
	PhaseAccumulating Phase = iota
	PhaseWithdrawing
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseAccumulating:
		return "accumulating"
	case PhaseWithdrawing:
		return "withdrawing"
	case PhaseTerminal:
		return "terminal"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// lifecycle enforces Accumulating -> Withdrawing -> Terminal
type lifecycle struct {
	phase  Phase
	logger zerolog.Logger
}

func newLifecycle(logger zerolog.Logger) *lifecycle {
	return &lifecycle{phase: PhaseAccumulating, logger: logger}
}

// advance moves to the next phase; skipping or going back is a bug
func (l *lifecycle) advance(to Phase) error {
	if to != l.phase+1 {
		return fmt.Errorf("retirement: invalid transition %s -> %s", l.phase, to)
	}
	l.logger.Debug().Stringer("from", l.phase).Stringer("to", to).Msg("phase transition")
	l.phase = to
	return nil
}
