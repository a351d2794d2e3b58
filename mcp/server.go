package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/folio/search"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Searcher runs retrieval queries. *search.Searcher satisfies it.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
}

// Server is the MCP server for folio.
type Server struct {
	searcher Searcher
	server   *mcp.Server
	logger   *slog.Logger
}

// NewServer creates an MCP server answering tool calls with searcher.
func NewServer(searcher Searcher) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	impl := &mcp.Implementation{
		Name:    "folio",
		Version: Version,
	}

	s := &Server{
		searcher: searcher,
		server:   mcp.NewServer(impl, nil),
		logger:   slog.Default().With("component", "mcp"),
	}
	s.registerTools()

	return s, nil
}

// Run serves MCP over stdio.
// It blocks until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves MCP over streamable HTTP at path on addr.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr, path string) error {
	if path == "" {
		path = "/mcp"
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Handler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	s.logger.Info("serving mcp over http", "addr", addr, "path", path)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
