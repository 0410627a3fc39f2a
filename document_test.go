package toast

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/go-cmp/cmp"
)

func renderDoc(t *testing.T, doc *Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := doc.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestDocument_Upgrade(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{"card.html": "<p>card</p>"})
	rt.Define("x-card", "card.html", "")

	doc, err := rt.ParseString(`<main><x-card title="A">light</x-card><x-other></x-other></main>`)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	if n := len(doc.Elements()); n != 1 {
		t.Fatalf("Elements() = %d, want 1", n)
	}

	got := renderDoc(t, doc)
	want := `<main><x-card title="A"><template shadowrootmode="open"><p>card</p></template>light</x-card><x-other></x-other></main>`
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestDocument_BeforeAttach(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{"card.html": "<p>card</p>"})
	rt.Define("x-card", "card.html", "")

	doc, _ := rt.ParseString(`<x-card></x-card>`)
	if got := doc.String(); got != "<x-card></x-card>" {
		t.Errorf("String() before attach = %q", got)
	}
}

func TestDocument_SkipsInertContent(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	rt.Define("x-card", "card.html", "")

	doc, _ := rt.ParseString(`<template><x-card></x-card></template><script>"<x-card></x-card>"</script>`)
	if n := len(doc.Elements()); n != 0 {
		t.Errorf("Elements() = %d, want 0 for inert content", n)
	}
}

func TestDocument_NestedUpgrade(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{
		"outer.html": `<div><x-inner n="2"></x-inner></div>`,
		"inner.html": `<b>inner</b>`,
	})
	rt.Define("x-outer", "outer.html", "")
	rt.Define("x-inner", "inner.html", "")

	doc, _ := rt.ParseString(`<x-outer></x-outer>`)
	defer doc.Close()

	got := renderDoc(t, doc)
	want := `<x-outer><template shadowrootmode="open"><div><x-inner n="2"><template shadowrootmode="open"><b>inner</b></template></x-inner></div></template></x-outer>`
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}

	inner := doc.ElementsByTag("x-inner")
	if len(inner) != 1 {
		t.Fatalf("ElementsByTag(x-inner) = %d, want 1", len(inner))
	}
	attrs, _ := inner[0].Attributes()
	if diff := cmp.Diff(Attributes{"n": Number(2)}, attrs); diff != "" {
		t.Errorf("inner attributes mismatch (-want +got):\n%s", diff)
	}
	if _, ok := doc.Lookup(inner[0].ID()); !ok {
		t.Error("Lookup() did not find the nested element")
	}
}

func TestDocument_Detach(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{
		"outer.html": `<x-inner></x-inner>`,
		"inner.html": `<b>inner</b>`,
	})
	rt.Define("x-outer", "outer.html", "")
	rt.Define("x-inner", "inner.html", "")

	doc, _ := rt.ParseString(`<p>before</p><x-outer></x-outer>`)
	renderDoc(t, doc)

	outer := doc.ElementsByTag("x-outer")[0]
	inner := doc.ElementsByTag("x-inner")[0]

	if !doc.Detach(outer.ID()) {
		t.Fatal("Detach() = false")
	}
	if doc.Detach(outer.ID()) {
		t.Error("second Detach() = true")
	}

	if outer.State() != StateDetached || inner.State() != StateDetached {
		t.Errorf("states = %v, %v, want both detached", outer.State(), inner.State())
	}
	if len(doc.Elements()) != 0 {
		t.Errorf("Elements() = %d after detach, want 0", len(doc.Elements()))
	}
	if _, ok := rt.Lookup(inner.ID()); ok {
		t.Error("nested element still visible through runtime lookup")
	}
	if got := doc.String(); got != "<p>before</p>" {
		t.Errorf("String() after detach = %q", got)
	}
}

func TestDocument_Close(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{"card.html": "<p>card</p>"})
	rt.Define("x-card", "card.html", "")

	doc, _ := rt.ParseString(`<x-card></x-card><x-card></x-card>`)
	renderDoc(t, doc)
	elems := doc.Elements()

	doc.Close()
	for _, e := range elems {
		if e.State() != StateDetached {
			t.Errorf("element %s state = %v after Close", e.ID(), e.State())
		}
	}
	if got := doc.String(); got != "<x-card></x-card><x-card></x-card>" {
		t.Errorf("String() after Close = %q", got)
	}
}

func TestDocument_NoUpgradeAfterClose(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{
		"outer.html": `<x-inner></x-inner>`,
		"inner.html": `<b>inner</b>`,
	})
	rt.Define("x-outer", "outer.html", "")
	rt.Define("x-inner", "inner.html", "")

	// Ids x-1 and x-2; a registered child would be x-3.
	doc, _ := rt.ParseString(`<x-outer></x-outer>`)
	parent, err := rt.NewElement("x-outer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := parent.root.SetHTML(`<x-inner></x-inner>`); err != nil {
		t.Fatal(err)
	}

	// A render that settles after Close must not register its children.
	doc.Close()
	doc.upgradeRoot(context.Background(), parent)

	if n := len(doc.Elements()); n != 0 {
		t.Errorf("Elements() after Close = %d, want 0", n)
	}
	if _, ok := rt.Lookup("x-3"); ok {
		t.Error("child attached into a closed document")
	}

	doc.Attach(context.Background())
	if err := doc.Wait(context.Background()); err != nil {
		t.Errorf("Wait() after Close error = %v", err)
	}
}

func TestDocument_ScriptsPerInstance(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{
		"n.html": `<script>component.set_html("<i>" + str(attributes["v"]) + "</i>")</script>`,
	})
	rt.Define("x-n", "n.html", "")

	doc, _ := rt.ParseString(`<x-n v="1"></x-n><x-n v="two"></x-n>`)
	defer doc.Close()

	got := renderDoc(t, doc)
	for _, want := range []string{
		`<x-n v="1"><template shadowrootmode="open"><i>1</i></template></x-n>`,
		`<x-n v="two"><template shadowrootmode="open"><i>two</i></template></x-n>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %q, want it to contain %q", got, want)
		}
	}
}

func TestDocument_TemplComponent(t *testing.T) {
	rt, _ := newTestRuntime(t, map[string]string{"card.html": "<p>card</p>"})
	rt.Define("x-card", "card.html", "")

	doc, _ := rt.Parse(strings.NewReader(`<!DOCTYPE html><html><body><x-card></x-card></body></html>`))
	defer doc.Close()

	var comp templ.Component = doc
	var buf bytes.Buffer
	if err := comp.Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	want := `<!DOCTYPE html><html><head></head><body><x-card><template shadowrootmode="open"><p>card</p></template></x-card></body></html>`
	if buf.String() != want {
		t.Errorf("Render() = %q, want %q", buf.String(), want)
	}
}

func TestDocument_WaitHonorsContext(t *testing.T) {
	rt, f := newTestRuntime(t, map[string]string{"slow.html": "x"})
	f.Gate = make(chan struct{})
	rt.Define("x-slow", "slow.html", "")

	doc, _ := rt.ParseString(`<x-slow></x-slow>`)
	defer doc.Close()
	doc.Attach(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := doc.Wait(ctx); err == nil {
		t.Error("Wait() expected error for canceled context")
	}
}
