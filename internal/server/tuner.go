package server

import (
	"context"
	"runtime"

	"github.com/prismwm/prism/internal/logger"
)

// SystemTuner is the capability object for host performance tuning.
// It is passed into the display server at construction and torn down on
// shutdown; there is no process-global tuning state.
type SystemTuner interface {
	Name() string
	Init(ctx context.Context) error
	Teardown() error
}

// noopTuner performs no tuning. It only records what it would have
// looked at, which keeps the tuner path exercised in every deployment.
type noopTuner struct{}

// NewNoopTuner returns the default tuner.
func NewNoopTuner() SystemTuner {
	return noopTuner{}
}

func (noopTuner) Name() string { return "noop" }

func (noopTuner) Init(ctx context.Context) error {
	logger.Debug("system tuner initialized", "tuner", "noop", "gomaxprocs", runtime.GOMAXPROCS(0), "numcpu", runtime.NumCPU())
	return nil
}

func (noopTuner) Teardown() error {
	return nil
}
