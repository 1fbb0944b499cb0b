package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// LogProgress reports pipeline progress as log lines, one every `every` steps.
type LogProgress struct {
	logger *Logger
	every  int

	mu     sync.Mutex
	totals map[string]int
	done   map[string]int
}

func NewLogProgress(logger *Logger, every int) *LogProgress {
	if every < 1 {
		every = 1
	}
	return &LogProgress{
		logger: logger,
		every:  every,
		totals: make(map[string]int),
		done:   make(map[string]int),
	}
}

func (p *LogProgress) Start(stage string, total int) {
	p.mu.Lock()
	p.totals[stage] = total
	p.done[stage] = 0
	p.mu.Unlock()
	p.logger.Info("[progress] %s: starting (%d units)", stage, total)
}

func (p *LogProgress) Step(stage string) {
	p.mu.Lock()
	p.done[stage]++
	done, total := p.done[stage], p.totals[stage]
	p.mu.Unlock()

	if done%p.every == 0 || done == total {
		p.logger.Info("[progress] %s: %d/%d", stage, done, total)
	}
}

func (p *LogProgress) Done(stage string) {
	p.mu.Lock()
	done := p.done[stage]
	p.mu.Unlock()
	p.logger.Info("[progress] %s: finished after %d units", stage, done)
}

// SpinnerProgress renders a terminal spinner with a done/total suffix.
type SpinnerProgress struct {
	mu    sync.Mutex
	out   io.Writer
	spin  *spinner.Spinner
	stage string
	total int
	done  int
}

func NewSpinnerProgress() *SpinnerProgress {
	return &SpinnerProgress{out: os.Stderr}
}

func (p *SpinnerProgress) Start(stage string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spin != nil {
		p.spin.Stop()
	}
	p.stage, p.total, p.done = stage, total, 0
	p.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.out))
	p.spin.Suffix = p.suffix()
	p.spin.Start()
}

func (p *SpinnerProgress) Step(stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spin == nil || stage != p.stage {
		return
	}
	p.done++
	p.spin.Lock()
	p.spin.Suffix = p.suffix()
	p.spin.Unlock()
}

func (p *SpinnerProgress) Done(stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spin == nil || stage != p.stage {
		return
	}
	p.spin.FinalMSG = fmt.Sprintf("%s done (%d/%d)\n", p.stage, p.done, p.total)
	p.spin.Stop()
	p.spin = nil
}

func (p *SpinnerProgress) suffix() string {
	return fmt.Sprintf(" %s %d/%d", p.stage, p.done, p.total)
}
