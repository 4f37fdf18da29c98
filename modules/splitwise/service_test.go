package splitwise_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/guarzo/splitwise-mcp/common/model"
	"github.com/guarzo/splitwise-mcp/modules/splitwise"
)

type mockSplitwiseClient struct {
	getBytesFunc func(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error)
	postFunc     func(ctx context.Context, endpoint string, data map[string]any) (json.RawMessage, error)
}

func (m *mockSplitwiseClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
	data, err := m.getBytesFunc(ctx, endpoint, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, entity)
}
func (m *mockSplitwiseClient) GetBytes(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	return m.getBytesFunc(ctx, endpoint, params)
}
func (m *mockSplitwiseClient) PostJSON(ctx context.Context, endpoint string, data map[string]any) (json.RawMessage, error) {
	return m.postFunc(ctx, endpoint, data)
}
func (m *mockSplitwiseClient) DoRequest(ctx context.Context, method, urlStr string, body io.Reader) ([]byte, error) {
	panic("DoRequest not implemented in mock")
}
func (m *mockSplitwiseClient) Stats() splitwise.RequestStats {
	return splitwise.RequestStats{}
}

func TestSplitwiseService_GetCategoriesMemoized(t *testing.T) {
	calls := map[string]int{}
	mClient := &mockSplitwiseClient{
		getBytesFunc: func(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
			calls[endpoint]++
			return json.RawMessage(`{"categories":[]}`), nil
		},
	}
	svc := splitwise.NewSplitwiseService(mClient, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.GetCategories(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.GetCurrencies(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls["get_categories"] != 1 || calls["get_currencies"] != 1 {
		t.Errorf("expected one call per endpoint, got %v", calls)
	}

	svc.ClearCache()
	if _, err := svc.GetCategories(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls["get_categories"] != 2 {
		t.Errorf("expected refetch after ClearCache, got %d", calls["get_categories"])
	}
}

func TestSplitwiseService_GetCategoriesFailureNotCached(t *testing.T) {
	calls := 0
	mClient := &mockSplitwiseClient{
		getBytesFunc: func(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("boom")
			}
			return json.RawMessage(`{"categories":[]}`), nil
		},
	}
	svc := splitwise.NewSplitwiseService(mClient, 0)

	if _, err := svc.GetCategories(context.Background()); err == nil {
		t.Fatal("expected error on first call")
	}
	if _, err := svc.GetCategories(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestSplitwiseService_TypedLists(t *testing.T) {
	mClient := &mockSplitwiseClient{
		getBytesFunc: func(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
			switch endpoint {
			case "get_friends":
				return json.RawMessage(`{"friends":[{"id":7,"first_name":"Jon","last_name":null}]}`), nil
			case "get_groups":
				return json.RawMessage(`{}`), nil
			case "get_categories":
				return json.RawMessage(`{"categories":[{"id":1,"name":"Food","subcategories":[{"id":2,"name":"Groceries"}]}]}`), nil
			}
			return nil, errors.New("unexpected endpoint " + endpoint)
		},
	}
	svc := splitwise.NewSplitwiseService(mClient, 0)
	ctx := context.Background()

	friends, err := svc.Friends(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []model.Friend{{ID: 7, FirstName: "Jon"}}; !reflect.DeepEqual(friends, want) {
		t.Errorf("got %#v, want %#v", friends, want)
	}

	groups, err := svc.Groups(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %v", groups)
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 1 || len(cats[0].Subcategories) != 1 {
		t.Errorf("expected nested categories, got %#v", cats)
	}
}

func TestSplitwiseService_WriteChecksSuccess(t *testing.T) {
	var gotEndpoint string
	mClient := &mockSplitwiseClient{
		postFunc: func(ctx context.Context, endpoint string, data map[string]any) (json.RawMessage, error) {
			gotEndpoint = endpoint
			return json.RawMessage(`{"success":false,"errors":["Expense is locked"]}`), nil
		},
	}
	svc := splitwise.NewSplitwiseService(mClient, 0)

	_, err := svc.DeleteExpense(context.Background(), 99)
	if err == nil || err.Error() != "Expense is locked" {
		t.Fatalf("expected 'Expense is locked', got %v", err)
	}
	if gotEndpoint != "delete_expense/99" {
		t.Errorf("unexpected endpoint %q", gotEndpoint)
	}
}

func TestSplitwiseService_GetComments(t *testing.T) {
	mClient := &mockSplitwiseClient{
		getBytesFunc: func(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
			if endpoint != "get_comments" || params["expense_id"] != "55" {
				return nil, errors.New("unexpected request")
			}
			return json.RawMessage(`{"comments":[]}`), nil
		},
	}
	svc := splitwise.NewSplitwiseService(mClient, 0)

	data, err := svc.GetComments(context.Background(), 55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"comments":[]}` {
		t.Errorf("unexpected body %s", data)
	}
}
