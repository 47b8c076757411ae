package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/matzehuels/handscript/pkg/observability"
)

type stageLog struct {
	observability.NoopPipelineHooks
	started []observability.Stage
}

func (l *stageLog) OnStageStart(_ context.Context, s observability.Stage) {
	l.started = append(l.started, s)
}

func TestSpinnerStop(t *testing.T) {
	var buf bytes.Buffer
	spinnerOut = &buf
	t.Cleanup(func() { spinnerOut = &bytes.Buffer{} })

	s := startSpinner(context.Background(), "Writing...")
	time.Sleep(100 * time.Millisecond)
	s.stop()
	s.stop()

	if !bytes.Contains(buf.Bytes(), []byte("Writing...")) {
		t.Errorf("spinner output %q lacks message", buf.String())
	}
}

func TestSpinnerCancelled(t *testing.T) {
	spinnerOut = &bytes.Buffer{}
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, "Reading pages...")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after cancel")
	}
	s.stop()
}

func TestFollowStages(t *testing.T) {
	spinnerOut = &bytes.Buffer{}
	t.Cleanup(observability.Reset)

	rec := &stageLog{}
	observability.SetPipelineHooks(rec)

	stop := followStages(context.Background())
	hooks := observability.Pipeline()
	hooks.OnStageStart(context.Background(), observability.StagePlan)

	sp, ok := hooks.(stageSpinner)
	if !ok {
		t.Fatalf("registered hooks = %T, want stageSpinner", hooks)
	}
	if got := sp.s.current(); got != stageMessages[observability.StagePlan] {
		t.Errorf("message = %q, want %q", got, stageMessages[observability.StagePlan])
	}

	stop()
	if observability.Pipeline() != observability.PipelineHooks(rec) {
		t.Error("previous hooks not restored")
	}
	if len(rec.started) != 1 || rec.started[0] != observability.StagePlan {
		t.Errorf("forwarded stages = %v", rec.started)
	}
}
