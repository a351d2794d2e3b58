package formats

import (
	"context"
	"log/slog"
	"maps"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
)

var _ Provider = (*Outlook)(nil)

// Element categories recorded in chunk metadata.
const (
	categoryHeader     = "header"
	categoryBody       = "body"
	categoryAttachment = "attachment"
)

// Outlook handles email messages: Outlook .msg files and RFC 822 .eml files.
// The message header, body and any textual attachments each become an
// element that is chunked separately.
type Outlook struct {
	base
	conv   *convert.Converter
	logger *slog.Logger
}

// NewOutlook creates the outlook provider.
func NewOutlook(conv *convert.Converter) *Outlook {
	return &Outlook{
		base: base{
			name:       "outlook",
			extensions: []string{".msg", ".eml"},
			defaults:   core.ChunkParams{Size: 500, Overlap: 0},
		},
		conv:   conv,
		logger: slog.Default().With("component", "outlook-provider"),
	}
}

func (p *Outlook) Capabilities() Capabilities { return defaultCapabilities() }

func (p *Outlook) ProcessFile(_ context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error) {
	params, err := p.params(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	msg, err := p.load(f)
	if err != nil {
		return nil, err
	}
	return splitDocuments(characterSplitter(params), msg.elements(f.FileName))
}

// ConvertToPDF renders the concatenated message elements as plain text.
// The preview keeps the ID and file name of f.
func (p *Outlook) ConvertToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	msg, err := p.load(f)
	if err != nil {
		return nil, err
	}
	elements := msg.elements(f.FileName)
	parts := make([]string, len(elements))
	for i, el := range elements {
		parts[i] = el.PageContent
	}
	return p.conv.PlainToPDF(ctx, strings.Join(parts, "\n"), f.ID, f.FileName)
}

func (p *Outlook) load(f *source.SourceFile) (*mailMessage, error) {
	var (
		msg *mailMessage
		err error
	)
	if strings.EqualFold(filepath.Ext(f.FileName), ".msg") {
		msg, err = readMSG(f.Path)
	} else {
		msg, err = readEML(f.Path)
	}
	if err != nil {
		p.logger.Error("failed to read message", "doc_id", f.ID, "file_name", f.FileName, "err", err)
		return nil, err
	}
	return msg, nil
}

type mailAttachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type mailMessage struct {
	Subject     string
	From        string
	To          string
	Cc          string
	Date        time.Time
	Body        string
	Attachments []mailAttachment
}

// metadata returns fields shared by all elements. Timestamps are
// normalized to RFC 3339.
func (m *mailMessage) metadata(fileName string) map[string]any {
	meta := map[string]any{core.MetadataSource: fileName}
	if m.Subject != "" {
		meta["subject"] = m.Subject
	}
	if m.From != "" {
		meta["sent_from"] = m.From
	}
	if m.To != "" {
		meta["sent_to"] = m.To
	}
	if !m.Date.IsZero() {
		meta["date"] = m.Date.Format(time.RFC3339)
	}
	return meta
}

func (m *mailMessage) header() string {
	var lines []string
	add := func(k, v string) {
		if v != "" {
			lines = append(lines, k+": "+v)
		}
	}
	add("Subject", m.Subject)
	add("From", m.From)
	add("To", m.To)
	add("Cc", m.Cc)
	if !m.Date.IsZero() {
		add("Date", m.Date.Format(time.RFC3339))
	}
	return strings.Join(lines, "\n")
}

func (m *mailMessage) elements(fileName string) []schema.Document {
	shared := m.metadata(fileName)
	element := func(category, text string, extra map[string]any) schema.Document {
		meta := maps.Clone(shared)
		meta["category"] = category
		maps.Copy(meta, extra)
		return schema.Document{PageContent: text, Metadata: meta}
	}

	var out []schema.Document
	if h := m.header(); h != "" {
		out = append(out, element(categoryHeader, h, nil))
	}
	if body := strings.TrimSpace(m.Body); body != "" {
		out = append(out, element(categoryBody, body, nil))
	}
	for _, a := range m.Attachments {
		text, ok := attachmentText(a)
		if !ok {
			continue
		}
		out = append(out, element(categoryAttachment, text, map[string]any{"attachment": a.Name}))
	}
	return out
}

var textAttachmentExts = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".csv": true, ".log": true,
	".json": true, ".xml": true, ".html": true, ".htm": true, ".eml": true,
}

// attachmentText returns the readable text of an attachment, if it has any.
func attachmentText(a mailAttachment) (string, bool) {
	ext := strings.ToLower(filepath.Ext(a.Name))
	isText := textAttachmentExts[ext] || strings.HasPrefix(strings.ToLower(a.ContentType), "text/")
	if !isText || !utf8.Valid(a.Data) {
		return "", false
	}
	text := string(a.Data)
	if ext == ".html" || ext == ".htm" || strings.HasPrefix(a.ContentType, "text/html") {
		if _, visible, err := visibleText(a.Data); err == nil {
			text = visible
		}
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func readEML(path string) (*mailMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env, err := enmime.ReadEnvelope(file)
	if err != nil {
		return nil, err
	}

	msg := &mailMessage{
		Subject: env.GetHeader("Subject"),
		From:    env.GetHeader("From"),
		To:      env.GetHeader("To"),
		Cc:      env.GetHeader("Cc"),
		Body:    env.Text,
	}
	if d, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		msg.Date = d
	}
	if strings.TrimSpace(msg.Body) == "" && env.HTML != "" {
		if _, visible, err := visibleText([]byte(env.HTML)); err == nil {
			msg.Body = visible
		}
	}
	for _, part := range env.Attachments {
		msg.Attachments = append(msg.Attachments, mailAttachment{
			Name:        part.FileName,
			ContentType: part.ContentType,
			Data:        part.Content,
		})
	}
	return msg, nil
}
