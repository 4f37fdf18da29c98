package splitwise

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
)

// SplitwiseService is a higher-level interface with one method per remote
// operation. Responses are passed through untouched.
type SplitwiseService interface {
	// users
	GetCurrentUser(ctx context.Context) (json.RawMessage, error)
	GetUser(ctx context.Context, userID int64) (json.RawMessage, error)
	UpdateUser(ctx context.Context, userID int64, data map[string]any) (json.RawMessage, error)
	// expenses
	GetExpenses(ctx context.Context, params map[string]string) (json.RawMessage, error)
	GetExpense(ctx context.Context, expenseID int64) (json.RawMessage, error)
	CreateExpense(ctx context.Context, data map[string]any) (json.RawMessage, error)
	UpdateExpense(ctx context.Context, expenseID int64, data map[string]any) (json.RawMessage, error)
	DeleteExpense(ctx context.Context, expenseID int64) (json.RawMessage, error)
	UndeleteExpense(ctx context.Context, expenseID int64) (json.RawMessage, error)
	// groups
	GetGroups(ctx context.Context) (json.RawMessage, error)
	GetGroup(ctx context.Context, groupID int64) (json.RawMessage, error)
	CreateGroup(ctx context.Context, data map[string]any) (json.RawMessage, error)
	DeleteGroup(ctx context.Context, groupID int64) (json.RawMessage, error)
	UndeleteGroup(ctx context.Context, groupID int64) (json.RawMessage, error)
	AddUserToGroup(ctx context.Context, data map[string]any) (json.RawMessage, error)
	RemoveUserFromGroup(ctx context.Context, data map[string]any) (json.RawMessage, error)
	// friends
	GetFriends(ctx context.Context) (json.RawMessage, error)
	GetFriend(ctx context.Context, userID int64) (json.RawMessage, error)
	CreateFriend(ctx context.Context, data map[string]any) (json.RawMessage, error)
	CreateFriends(ctx context.Context, data map[string]any) (json.RawMessage, error)
	DeleteFriend(ctx context.Context, userID int64) (json.RawMessage, error)
	// comments
	GetComments(ctx context.Context, expenseID int64) (json.RawMessage, error)
	CreateComment(ctx context.Context, data map[string]any) (json.RawMessage, error)
	DeleteComment(ctx context.Context, commentID int64) (json.RawMessage, error)
	// notifications
	GetNotifications(ctx context.Context, params map[string]string) (json.RawMessage, error)
	// reference data, memoized
	GetCategories(ctx context.Context) (json.RawMessage, error)
	GetCurrencies(ctx context.Context) (json.RawMessage, error)
	ClearCache()

	// typed lists for name resolution
	Friends(ctx context.Context) ([]model.Friend, error)
	Groups(ctx context.Context) ([]model.Group, error)
	Categories(ctx context.Context) ([]model.Category, error)
}

// splitwiseService is the concrete implementation that uses SplitwiseClient.
type splitwiseService struct {
	client SplitwiseClient
	refs   *common.ExpiringCache[string, json.RawMessage]
}

// DefaultReferenceTTL is how long categories and currencies are kept.
const DefaultReferenceTTL = 24 * time.Hour

// NewSplitwiseService constructs a SplitwiseService. referenceTTL controls the
// categories/currencies cache; zero means DefaultReferenceTTL.
func NewSplitwiseService(client SplitwiseClient, referenceTTL time.Duration) SplitwiseService {
	if referenceTTL <= 0 {
		referenceTTL = DefaultReferenceTTL
	}
	return &splitwiseService{
		client: client,
		refs:   common.NewExpiringCache[string, json.RawMessage](referenceTTL),
	}
}

// write POSTs and turns a 200-with-errors body into an error.
func (s *splitwiseService) write(ctx context.Context, endpoint string, data map[string]any) (json.RawMessage, error) {
	resp, err := s.client.PostJSON(ctx, endpoint, data)
	if err != nil {
		return nil, err
	}
	return CheckSuccess(resp)
}

func (s *splitwiseService) GetCurrentUser(ctx context.Context) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, "get_current_user", nil)
}

func (s *splitwiseService) GetUser(ctx context.Context, userID int64) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, fmt.Sprintf("get_user/%d", userID), nil)
}

func (s *splitwiseService) UpdateUser(ctx context.Context, userID int64, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("update_user/%d", userID), data)
}

func (s *splitwiseService) GetFriends(ctx context.Context) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, "get_friends", nil)
}

func (s *splitwiseService) GetFriend(ctx context.Context, userID int64) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, fmt.Sprintf("get_friend/%d", userID), nil)
}

func (s *splitwiseService) CreateFriend(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "create_friend", data)
}

func (s *splitwiseService) CreateFriends(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "create_friends", data)
}

func (s *splitwiseService) DeleteFriend(ctx context.Context, userID int64) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("delete_friend/%d", userID), nil)
}

func (s *splitwiseService) GetComments(ctx context.Context, expenseID int64) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, "get_comments", map[string]string{"expense_id": fmt.Sprint(expenseID)})
}

func (s *splitwiseService) CreateComment(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "create_comment", data)
}

func (s *splitwiseService) DeleteComment(ctx context.Context, commentID int64) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("delete_comment/%d", commentID), nil)
}

func (s *splitwiseService) GetNotifications(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, "get_notifications", params)
}
