package formats

import (
	"maps"
	"strings"

	"github.com/poiesic/folio/core"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// characterSplitter splits recursively on paragraph, line and word
// boundaries before falling back to hard character cuts.
func characterSplitter(p core.ChunkParams) textsplitter.TextSplitter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.Size),
		textsplitter.WithChunkOverlap(p.Overlap),
	)
}

// markdownSplitter prefers heading and list boundaries. Code blocks are
// kept; the splitter drops them unless told otherwise.
func markdownSplitter(p core.ChunkParams) textsplitter.TextSplitter {
	return textsplitter.NewMarkdownTextSplitter(
		textsplitter.WithChunkSize(p.Size),
		textsplitter.WithChunkOverlap(p.Overlap),
		textsplitter.WithCodeBlocks(true),
	)
}

// splitText splits text and gives every chunk its own copy of meta.
func splitText(s textsplitter.TextSplitter, text string, meta map[string]any) ([]schema.Document, error) {
	chunks, err := s.SplitText(text)
	if err != nil {
		return nil, err
	}
	docs := make([]schema.Document, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		m := make(map[string]any, len(meta))
		maps.Copy(m, meta)
		docs = append(docs, schema.Document{PageContent: chunk, Metadata: m})
	}
	return docs, nil
}

// splitDocuments splits each element, carrying its metadata to every chunk.
func splitDocuments(s textsplitter.TextSplitter, elements []schema.Document) ([]schema.Document, error) {
	var out []schema.Document
	for _, el := range elements {
		docs, err := splitText(s, el.PageContent, el.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
	}
	return out, nil
}
