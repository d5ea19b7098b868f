package judge

import (
	"context"
	"testing"
	"time"
)

type tagged struct {
	Client
	tag   string
	trace *[]string
}

func (t *tagged) Generate(ctx context.Context, p string) (string, error) {
	*t.trace = append(*t.trace, t.tag)
	return t.Client.Generate(ctx, p)
}

func TestWrap_OuterToInnerOrder(t *testing.T) {
	var trace []string
	inner := &stubClient{responses: []string{"ok"}}
	mwA := func(next Client) Client { return &tagged{Client: next, tag: "a", trace: &trace} }
	mwB := func(next Client) Client { return &tagged{Client: next, tag: "b", trace: &trace} }

	cli := Wrap(inner, mwA, mwB)
	if _, err := cli.Generate(context.Background(), "p"); err != nil {
		t.Fatal(err)
	}
	if len(trace) != 2 || trace[0] != "a" || trace[1] != "b" {
		t.Fatalf("trace: %v", trace)
	}
}

type hanging struct{ Client }

func (h *hanging) Generate(ctx context.Context, p string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestWithTimeout_CancelsSlowCall(t *testing.T) {
	cli := WithTimeout(time.Millisecond)(&hanging{Client: &stubClient{}})
	start := time.Now()
	_, err := cli.Generate(context.Background(), "p")
	if err == nil {
		t.Fatal("expected deadline error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("deadline not applied")
	}
}

func TestRateLimit_DisabledWhenRPSZero(t *testing.T) {
	cli := RateLimit(0, 0)(&stubClient{responses: []string{"ok"}})
	out, err := cli.Generate(context.Background(), "p")
	if err != nil || out != "ok" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestRateLimit_BurstAllowsImmediateCalls(t *testing.T) {
	stub := &stubClient{responses: []string{"a", "b"}}
	cli := RateLimit(1, 2)(stub)

	start := time.Now()
	for _, want := range []string{"a", "b"} {
		out, err := cli.Generate(context.Background(), "p")
		if err != nil || out != want {
			t.Fatalf("got %q, %v", out, err)
		}
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("burst calls throttled")
	}
}

func TestRateLimit_DeadlineStopsWaiting(t *testing.T) {
	stub := &stubClient{responses: []string{"a", "b"}}
	cli := RateLimit(0.001, 1)(stub)

	if _, err := cli.Generate(context.Background(), "p"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := cli.Generate(ctx, "p"); err == nil {
		t.Fatal("expected limiter error")
	}
	if stub.calls != 1 {
		t.Fatalf("calls: %d", stub.calls)
	}
}
