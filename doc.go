// Package toast provides a component runtime for custom elements whose
// markup, styling and behavior live in external resource files.
//
// A component is declared once with a tag name, a template path and an
// optional stylesheet path. Every instance of the tag found in a page is
// given its own isolated root, filled with the fetched template (prefixed by
// the stylesheet in a <style> block), and the script blocks inside it are
// executed with bindings scoped to that instance.
//
// # Core Concepts
//
// A Runtime owns the definitions, the shared resource cache and the
// instance lookup:
//
//	rt := toast.New(toast.WithFetcher(&toast.FSFetcher{FS: os.DirFS("web")}))
//	rt.Define("x-card", "components/card/card.html", "components/card/card.css")
//
// Tag names must contain a hyphen and may be defined only once; a second
// Define of the same tag fails with *DuplicateDefinitionError.
//
// # Lifecycle
//
// Each Element moves from Unattached to Attached to Detached:
//   - Attach coerces the element's attributes ("true"/"false" to booleans,
//     numeric strings to numbers, everything else kept as is) and starts
//     rendering in the background.
//   - Rendering fetches the template and stylesheet concurrently. If either
//     fetch fails nothing is written and the failure is logged once; the
//     element stays attached.
//   - Detach cancels a render still in flight and releases the isolated
//     root. A render that settles afterwards is dropped.
//
// # Resource Loading
//
// Resources are loaded through a Fetcher (HTTPFetcher, FSFetcher, or any
// implementation) and memoized by path in a Cache. Successful loads are
// cached forever; failures are never cached.
//
// # Scripts
//
// Markup assigned to a root never executes its scripts. After each render
// the runtime replaces every script block with a fresh copy and runs it once,
// in document order, through the Executor registered for its type.
// Blocks without a type are text/starlark and run on Starlark with two
// predeclared names:
//
//	<script>
//	    for el in component.find("h2"):
//	        el.set_text(attributes["title"])
//	</script>
//
// The bindings are passed as values, never spliced into the script source.
// Script failures go to the script error handler and do not affect the
// element's state.
//
// # Documents
//
// A Document is a parsed page. Render attaches every defined element,
// including ones that appear inside rendered roots, waits for all of them
// and writes the page with each root emitted as a declarative shadow root.
// Document implements templ.Component; Runtime.Handler serves a directory of
// pages this way.
package toast
