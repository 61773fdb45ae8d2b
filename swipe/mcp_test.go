package swipe

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "swipe-test", Version: "0.1.0"}

func mcpSession(t *testing.T, s *Service) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	session, err := mcp.NewClient(testMCPImpl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCall(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text, result.IsError
}

func TestMCP_Tools(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	idea := mustCreate(t, s, alice, "Agent readable")
	s.CreateComment(ctx, idea.ID, bob, "hello agent")
	session := mcpSession(t, s)

	text, isErr := mcpCall(t, session, "swipe_get_idea", map[string]any{"idea_id": idea.ID})
	if isErr {
		t.Fatalf("get_idea error: %s", text)
	}
	var got Idea
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != idea.ID || got.Title != "Agent readable" {
		t.Fatalf("idea: %+v", got)
	}

	text, _ = mcpCall(t, session, "swipe_list_comments", map[string]any{"idea_id": idea.ID})
	var comments struct {
		Count int `json:"count"`
	}
	json.Unmarshal([]byte(text), &comments)
	if comments.Count != 1 {
		t.Fatalf("comments: %s", text)
	}

	text, _ = mcpCall(t, session, "swipe_list_ideas", map[string]any{"author_email": alice})
	var ideas struct {
		Count int `json:"count"`
	}
	json.Unmarshal([]byte(text), &ideas)
	if ideas.Count != 1 {
		t.Fatalf("ideas: %s", text)
	}
}

func TestMCP_ErrorsAreToolErrors(t *testing.T) {
	session := mcpSession(t, newTestService(t))

	if _, isErr := mcpCall(t, session, "swipe_get_idea", map[string]any{"idea_id": "missing"}); !isErr {
		t.Fatal("missing idea should be a tool error")
	}
	if _, isErr := mcpCall(t, session, "swipe_list_ideas", map[string]any{}); !isErr {
		t.Fatal("missing author_email should be a tool error")
	}
}
