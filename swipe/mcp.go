package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/ideaswipe/kit"
)

// RegisterMCP registers the read-only swipe tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerGetIdeaTool(srv)
	s.registerListCommentsTool(srv)
	s.registerListIdeasTool(srv)
}

// toolChain decorates every tool endpoint.
func (s *Service) toolChain(name string) kit.Middleware {
	return kit.Chain(s.logToolCall(name))
}

func (s *Service) logToolCall(name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				s.logger.Warn("tool call failed", "tool", name, "transport", kit.GetTransport(ctx), "error", err, "duration_ms", time.Since(start).Milliseconds())
				return nil, err
			}
			s.logger.Debug("tool call", "tool", name, "transport", kit.GetTransport(ctx), "duration_ms", time.Since(start).Milliseconds())
			return resp, nil
		}
	}
}

type ideaIDReq struct {
	IdeaID string `json:"idea_id"`
}

func (s *Service) registerGetIdeaTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "swipe_get_idea",
		Description: "Get one startup idea with its engagement metrics.",
		InputSchema: kit.InputSchema(map[string]any{
			"idea_id": map[string]any{"type": "string", "description": "Idea ID"},
		}, "idea_id"),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*ideaIDReq)
		if r.IdeaID == "" {
			return nil, fmt.Errorf("%w: idea_id is required", ErrInvalidInput)
		}
		return s.GetIdea(ctx, r.IdeaID)
	}
	kit.RegisterMCPTool(srv, tool, s.toolChain(tool.Name)(endpoint), kit.DecodeArgs[ideaIDReq]())
}

func (s *Service) registerListCommentsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "swipe_list_comments",
		Description: "List the comments of an idea, newest first.",
		InputSchema: kit.InputSchema(map[string]any{
			"idea_id": map[string]any{"type": "string", "description": "Idea ID"},
		}, "idea_id"),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*ideaIDReq)
		if r.IdeaID == "" {
			return nil, fmt.Errorf("%w: idea_id is required", ErrInvalidInput)
		}
		comments, err := s.ListComments(ctx, r.IdeaID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"comments": comments, "count": len(comments)}, nil
	}
	kit.RegisterMCPTool(srv, tool, s.toolChain(tool.Name)(endpoint), kit.DecodeArgs[ideaIDReq]())
}

type listIdeasReq struct {
	AuthorEmail string `json:"author_email"`
}

func (s *Service) registerListIdeasTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "swipe_list_ideas",
		Description: "List the ideas written by a user, newest first, with their comments.",
		InputSchema: kit.InputSchema(map[string]any{
			"author_email": map[string]any{"type": "string", "description": "Author email"},
		}, "author_email"),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*listIdeasReq)
		if r.AuthorEmail == "" {
			return nil, fmt.Errorf("%w: author_email is required", ErrInvalidInput)
		}
		ideas, err := s.ListByAuthor(ctx, r.AuthorEmail)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ideas": ideas, "count": len(ideas)}, nil
	}
	kit.RegisterMCPTool(srv, tool, s.toolChain(tool.Name)(endpoint), kit.DecodeArgs[listIdeasReq]())
}
