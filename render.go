package toast

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RenderRequest describes one render of an element instance.
type RenderRequest struct {
	Root       *ShadowRoot
	Definition Definition
	Attributes Attributes
	InstanceID string

	// Lookup resolves the component binding for scripts. Nil binds Root.
	Lookup InstanceLookup
}

// Renderer loads a definition's resources, assigns the assembled markup to
// an isolated root and runs its scripts.
type Renderer struct {
	loader   *Loader
	isolator *Isolator
}

// NewRenderer creates a renderer.
func NewRenderer(loader *Loader, isolator *Isolator) *Renderer {
	return &Renderer{loader: loader, isolator: isolator}
}

// Render fetches the template and, when the definition has one, the
// stylesheet concurrently and waits for both. If either load fails the root
// is left exactly as it was and the *ResourceFetchError is returned.
//
// ctx is the instance's cancellation token. It is checked immediately before
// the root is written; a render that settles after cancellation writes
// nothing and returns the context error.
func (rd *Renderer) Render(ctx context.Context, req RenderRequest) error {
	def := req.Definition

	var tpl, css string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := rd.loader.Load(gctx, def.TemplatePath)
		tpl = text
		return err
	})
	if def.StylesheetPath != "" {
		g.Go(func() error {
			text, err := rd.loader.Load(gctx, def.StylesheetPath)
			css = text
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	markup := Assemble(tpl, css, def.StylesheetPath != "")

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := req.Root.SetHTML(markup); err != nil {
		return err
	}

	return rd.isolator.Isolate(ctx, req.Root, req.Attributes, req.InstanceID, req.Lookup)
}

// Assemble builds the content of an isolated root. With a stylesheet the
// result is a style block holding the stylesheet followed by the template;
// otherwise it is the template alone.
func Assemble(template, stylesheet string, hasStylesheet bool) string {
	if !hasStylesheet {
		return template
	}
	return "<style>" + stylesheet + "</style>" + template
}
