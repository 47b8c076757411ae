package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/handscript/pkg/observability"
)

// spinnerOut receives spinner frames. Set to io.Discard to silence them.
var spinnerOut io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var stageMessages = map[observability.Stage]string{
	observability.StageExtract: "Reading pages...",
	observability.StageStyle:   "Choosing a hand...",
	observability.StagePlan:    "Planning the layout...",
	observability.StageCompose: "Writing...",
	observability.StageRender:  "Rendering sheets...",
}

// spinner animates a status line on spinnerOut until stopped or until its
// context is cancelled.
type spinner struct {
	mu      sync.Mutex
	message string
	width   int

	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

func startSpinner(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{message: message, cancel: cancel, stopped: make(chan struct{})}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.mu.Lock()
			s.width = max(s.width, len(s.message)+2)
			fmt.Fprintf(spinnerOut, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// set replaces the status message.
func (s *spinner) set(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *spinner) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// stop halts the animation and clears the line. Safe to call repeatedly.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(spinnerOut, "\r%s\r", strings.Repeat(" ", s.width+2))
	}
}

// stageSpinner shows the running pipeline stage on a spinner and forwards
// every event to the hooks that were registered before it.
type stageSpinner struct {
	s    *spinner
	next observability.PipelineHooks
}

func (h stageSpinner) OnStageStart(ctx context.Context, stage observability.Stage) {
	if msg, ok := stageMessages[stage]; ok {
		h.s.set(msg)
	}
	h.next.OnStageStart(ctx, stage)
}

func (h stageSpinner) OnStageComplete(ctx context.Context, stage observability.Stage, d time.Duration, err error) {
	h.next.OnStageComplete(ctx, stage, d, err)
}

func (h stageSpinner) OnPlanOrigin(ctx context.Context, origin string, pages, lines int) {
	h.next.OnPlanOrigin(ctx, origin, pages, lines)
}

// followStages starts a spinner that tracks pipeline stages. The returned
// func stops it and restores the previous hooks.
func followStages(ctx context.Context) func() {
	prev := observability.Pipeline()
	s := startSpinner(ctx, "Starting...")
	observability.SetPipelineHooks(stageSpinner{s: s, next: prev})
	return func() {
		s.stop()
		observability.SetPipelineHooks(prev)
	}
}
