package formats

import (
	"fmt"
	"path/filepath"

	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// Matcher decides whether an entry handles a file.
type Matcher func(f *source.SourceFile) bool

type entry struct {
	match    Matcher
	provider Provider
}

// Registry selects a provider for a file. Entries are consulted in
// registration order and the first match wins.
type Registry struct {
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry registers every built-in provider in the order
// html, markdown, plain, ms_word, ms_excel, ms_ppt, libreoffice, outlook, pdf.
func DefaultRegistry(conv *convert.Converter) *Registry {
	pdf := NewPDF()
	r := NewRegistry()
	r.Register(NewHTML(conv))
	r.Register(NewMarkdown(conv))
	r.Register(NewPlain(conv))
	r.Register(NewMSWord(conv, pdf))
	r.Register(NewMSExcel(conv, pdf))
	r.Register(NewMSPowerPoint(conv, pdf))
	r.Register(NewLibreOffice(conv, pdf))
	r.Register(NewOutlook(conv))
	r.Register(pdf)
	return r
}

// Register appends p, matched by its own Supports.
func (r *Registry) Register(p Provider) {
	r.entries = append(r.entries, entry{match: p.Supports, provider: p})
}

// RegisterFunc appends p, matched by a custom predicate.
func (r *Registry) RegisterFunc(match Matcher, p Provider) {
	r.entries = append(r.entries, entry{match: match, provider: p})
}

// Lookup returns the first provider whose matcher accepts f.
func (r *Registry) Lookup(f *source.SourceFile) (Provider, error) {
	for _, e := range r.entries {
		if e.match(f) {
			return e.provider, nil
		}
	}
	ext := filepath.Ext(f.FileName)
	if ext == "" {
		ext = f.FileName
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
}

// Providers returns the registered providers in order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.provider
	}
	return out
}

// Extensions returns every extension accepted by a registered provider.
func (r *Registry) Extensions() []string {
	var out []string
	for _, e := range r.entries {
		out = append(out, e.provider.Extensions()...)
	}
	return out
}
