package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, StageExtract)
	p.OnStageComplete(ctx, StageExtract, time.Second, nil)
	p.OnPlanOrigin(ctx, "fallback", 1, 10)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "plan")
	c.OnCacheMiss(ctx, "extract")
	c.OnCacheSet(ctx, "artifact", 1024)

	a := NoopAIHooks{}
	a.OnRequest(ctx, "ollama", "plan")
	a.OnResponse(ctx, "ollama", "plan", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := AI().(NoopAIHooks); !ok {
		t.Error("AI() should return NoopAIHooks by default")
	}

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	h.Register()

	ctx := context.Background()
	Pipeline().OnStageComplete(ctx, StagePlan, time.Millisecond, errors.New("boom"))
	Cache().OnCacheHit(ctx, "plan")
	AI().OnRequest(ctx, "openai", "style")

	out := buf.String()
	for _, want := range []string{"stage failed", "boom", "cache hit", "ai request", "openai"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
