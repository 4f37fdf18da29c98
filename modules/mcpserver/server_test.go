package mcpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
	"github.com/guarzo/splitwise-mcp/modules/mcpserver"
	"github.com/guarzo/splitwise-mcp/modules/resolver"
	"github.com/guarzo/splitwise-mcp/modules/splitwise"
	"github.com/guarzo/splitwise-mcp/modules/tools"
)

type mockService struct {
	splitwise.SplitwiseService
	groups    []model.Group
	groupsErr error
}

func (m *mockService) GetCurrentUser(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"user":{"id":1,"first_name":"Ann"}}`), nil
}

func (m *mockService) GetGroup(ctx context.Context, groupID int64) (json.RawMessage, error) {
	return nil, common.ErrorForStatus(404, []byte(`{"error":"group missing"}`))
}

func (m *mockService) GetGroups(ctx context.Context) (json.RawMessage, error) {
	return nil, &common.RateLimitError{
		APIError:   common.APIError{Message: "Rate limited: slow down", StatusCode: 429, Kind: common.KindRateLimit},
		RetryAfter: 30,
	}
}

func (m *mockService) Groups(ctx context.Context) ([]model.Group, error) {
	return m.groups, m.groupsErr
}

func newServer(svc *mockService) *mcpserver.Server {
	reg := tools.NewRegistry(&tools.Env{
		Service:  svc,
		Resolver: resolver.NewResolver(svc, resolver.DefaultThreshold, time.Minute),
	})
	return mcpserver.NewServer(reg, nil)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func errorDetail(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	var payload struct {
		Error map[string]any `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("error payload is not JSON: %v", err)
	}
	return payload.Error
}

func TestCall_Success(t *testing.T) {
	res := newServer(&mockService{}).Call(context.Background(), "get_current_user", nil)
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	var body map[string]map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if body["user"]["first_name"] != "Ann" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestCall_ResolverCandidates(t *testing.T) {
	svc := &mockService{groups: []model.Group{{ID: 4, Name: "Roommates"}}}
	res := newServer(svc).Call(context.Background(), "resolve_group", map[string]any{"query": "roommates"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	var got []model.Candidate
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(got) != 1 || got[0] != (model.Candidate{ID: 4, Name: "Roommates", MatchScore: 100}) {
		t.Errorf("unexpected candidates %+v", got)
	}
}

func TestCall_ValidationError(t *testing.T) {
	res := newServer(&mockService{}).Call(context.Background(), "get_group", map[string]any{})
	detail := errorDetail(t, res)
	if detail["type"] != "validation" || detail["field"] != "group_id" || detail["message"] != "group_id is required" {
		t.Errorf("unexpected payload %v", detail)
	}
}

func TestCall_APIError(t *testing.T) {
	res := newServer(&mockService{}).Call(context.Background(), "get_group", map[string]any{"group_id": 5})
	detail := errorDetail(t, res)
	if detail["type"] != "not_found" || detail["status_code"] != float64(404) || detail["message"] != "Not found: group missing" {
		t.Errorf("unexpected payload %v", detail)
	}
}

func TestCall_RateLimit(t *testing.T) {
	res := newServer(&mockService{}).Call(context.Background(), "get_groups", nil)
	detail := errorDetail(t, res)
	if detail["type"] != "rate_limit" || detail["retry_after"] != float64(30) || detail["status_code"] != float64(429) {
		t.Errorf("unexpected payload %v", detail)
	}
}

func TestErrorPayload(t *testing.T) {
	wrapped := fmt.Errorf("loading groups: %w", &common.APIError{Message: "boom", Kind: common.KindConnection})
	detail := mcpserver.ErrorPayload(wrapped)["error"].(map[string]any)
	if detail["type"] != "connection" {
		t.Errorf("expected connection kind, got %v", detail)
	}
	if _, ok := detail["status_code"]; ok {
		t.Errorf("transport errors carry no status code: %v", detail)
	}

	detail = mcpserver.ErrorPayload(errors.New("weird"))["error"].(map[string]any)
	if detail["type"] != "internal" || detail["message"] != "weird" {
		t.Errorf("unexpected payload %v", detail)
	}
}

func TestToolFor_Schema(t *testing.T) {
	var def tools.Definition
	for _, d := range tools.Catalogue() {
		if d.Name == "create_expense" {
			def = d
		}
	}
	tool := mcpserver.ToolFor(def)

	if tool.Name != "create_expense" || tool.Description != def.Description {
		t.Errorf("unexpected tool header %s: %s", tool.Name, tool.Description)
	}
	required := map[string]bool{}
	for _, r := range tool.InputSchema.Required {
		required[r] = true
	}
	if !required["cost"] || !required["description"] || !required["group_id"] || required["date"] {
		t.Errorf("unexpected required list %v", tool.InputSchema.Required)
	}

	types := map[string]string{
		"cost":          "string",
		"group_id":      "integer",
		"split_equally": "boolean",
		"users":         "array",
	}
	for name, want := range types {
		prop, ok := tool.InputSchema.Properties[name].(map[string]any)
		if !ok {
			t.Fatalf("missing property %s", name)
		}
		if prop["type"] != want {
			t.Errorf("%s: got type %v, want %s", name, prop["type"], want)
		}
	}
	users := tool.InputSchema.Properties["users"].(map[string]any)
	if _, ok := users["items"]; !ok {
		t.Error("expected array items schema")
	}
}
