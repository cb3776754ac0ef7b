package mcptools

import (
	"context"
	"fmt"

	"FinAdvise/internal/usecase"
	applogger "FinAdvise/pkg/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the advisory tools over the Model Context Protocol.
type Server struct {
	mcp  *mcp.Server
	name string
	l    *applogger.Logger
}

// NewServer registers every catalog tool against svc.
func NewServer(svc *usecase.AdvisoryService, l *applogger.Logger, name, version string) *Server {
	if l == nil {
		l = applogger.Nop()
	}
	if name == "" {
		name = "finadvise"
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{
		mcp:  mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		name: name,
		l:    l,
	}
	registerTools(s.mcp, svc, l)
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves one session over t until ctx is cancelled or the peer disconnects.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.l.Info("mcp server: serving", applogger.String("name", s.name))
	if err := s.mcp.Run(ctx, t); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	s.l.Info("mcp server: stopped")
	return nil
}

// RunStdio serves on the process stdin and stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
