package toast

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestMapFetcher_Fetch(t *testing.T) {
	f := NewMapFetcher(map[string]string{"a.html": "A", "b.html": "B"})
	f.Status["b.html"] = http.StatusForbidden
	boom := errors.New("boom")
	f.Errors["c.html"] = boom
	ctx := context.Background()

	tests := []struct {
		path   string
		status int
		body   string
		err    error
	}{
		{"a.html", http.StatusOK, "A", nil},
		{"b.html", http.StatusForbidden, "B", nil},
		{"c.html", 0, "", boom},
		{"missing.html", http.StatusNotFound, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := f.Fetch(ctx, tt.path)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if resp.Status != tt.status || resp.Body != tt.body {
				t.Errorf("Fetch() = %d %q, want %d %q", resp.Status, resp.Body, tt.status, tt.body)
			}
		})
	}

	if f.TotalCalls() != 4 {
		t.Errorf("TotalCalls() = %d, want 4", f.TotalCalls())
	}
	if f.Calls("c.html") != 1 {
		t.Errorf("Calls(c.html) = %d, want 1 (failures are counted)", f.Calls("c.html"))
	}
}

func TestMapFetcher_Gate(t *testing.T) {
	gate := make(chan struct{})
	f := NewMapFetcher(map[string]string{"a.html": "A"})
	f.Gate = gate

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, "a.html"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Fetch() behind closed gate error = %v, want deadline exceeded", err)
	}

	close(gate)
	resp, err := f.Fetch(context.Background(), "a.html")
	if err != nil || resp.Body != "A" {
		t.Errorf("Fetch() after gate opened = %v, %v", resp, err)
	}
}

func TestTestRender_Success(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{"hello.html": "<div class=\"hello\">Hello, World!</div>"})
	rt.Define("x-hello", "hello.html", "")

	result, err := TestRender(context.Background(), rt, "x-hello", map[string]string{"count": "42"})
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}
	if result == nil {
		t.Fatal("TestRender() returned nil result")
	}
	if result.Err != nil {
		t.Errorf("result.Err = %v", result.Err)
	}
	if !result.HTMLContains("Hello, World!") {
		t.Errorf("HTML = %q, want it to contain greeting", result.HTML)
	}
	if result.Attributes["count"] != Number(42) {
		t.Errorf("Attributes[count] = %v, want 42", result.Attributes["count"])
	}
	if result.ID != "x-1" {
		t.Errorf("ID = %q, want x-1", result.ID)
	}
}

func TestTestRender_TemplateScriptsInert(t *testing.T) {
	tpl := `<p>x</p><template><script>component.append_html("<b>ran</b>")</script></template>`
	rt, _ := newTestRuntime(t, map[string]string{"inert.html": tpl})
	rt.Define("x-inert", "inert.html", "")

	result, err := TestRender(context.Background(), rt, "x-inert", nil)
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}
	if result.HTML != tpl {
		t.Errorf("HTML = %q, want %q", result.HTML, tpl)
	}
}

func TestTestRender_RenderError(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	rt.Define("x-broken", "broken.html", "")

	result, err := TestRender(context.Background(), rt, "x-broken", nil)
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}
	if !IsNotFound(result.Err) {
		t.Errorf("result.Err = %v, want not found", result.Err)
	}
	if result.HTML != "" {
		t.Errorf("HTML = %q, want empty", result.HTML)
	}
}

func TestTestRender_UndefinedTag(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)

	if _, err := TestRender(context.Background(), rt, "x-nope", nil); !IsNotFound(err) {
		t.Errorf("TestRender() error = %v, want not found", err)
	}
}

func TestTestRender_ContextDone(t *testing.T) {
	rt, f := newTestRuntime(t, map[string]string{"slow.html": "<p>slow</p>"})
	f.Gate = make(chan struct{})
	rt.Define("x-slow", "slow.html", "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := TestRender(ctx, rt, "x-slow", nil); err == nil {
		t.Error("TestRender() expected error when context ends first")
	}
}

func TestTestResult_HTMLContains(t *testing.T) {
	result := &TestResult{HTML: `<div class="test">Hello World</div>`}

	tests := []struct {
		substr string
		want   bool
	}{
		{"Hello", true},
		{"World", true},
		{`class="test"`, true},
		{"Goodbye", false},
	}

	for _, tt := range tests {
		if got := result.HTMLContains(tt.substr); got != tt.want {
			t.Errorf("HTMLContains(%q) = %v, want %v", tt.substr, got, tt.want)
		}
		if got := result.HTMLNotContains(tt.substr); got == tt.want {
			t.Errorf("HTMLNotContains(%q) = %v, want %v", tt.substr, got, !tt.want)
		}
	}
}

func TestTestResult_HTMLContainsAll(t *testing.T) {
	result := &TestResult{HTML: `<div>Hello World</div>`}

	if !result.HTMLContainsAll("Hello", "World") {
		t.Error("HTMLContainsAll() should return true for all present")
	}
	if result.HTMLContainsAll("Hello", "Goodbye") {
		t.Error("HTMLContainsAll() should return false if any missing")
	}
}
