package splitwise

import (
	"context"
	"encoding/json"
	"fmt"
)

// This file focuses on expense and group endpoints.

func (s *splitwiseService) GetExpenses(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, "get_expenses", params)
}

func (s *splitwiseService) GetExpense(ctx context.Context, expenseID int64) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, fmt.Sprintf("get_expense/%d", expenseID), nil)
}

func (s *splitwiseService) CreateExpense(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "create_expense", data)
}

func (s *splitwiseService) UpdateExpense(ctx context.Context, expenseID int64, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("update_expense/%d", expenseID), data)
}

func (s *splitwiseService) DeleteExpense(ctx context.Context, expenseID int64) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("delete_expense/%d", expenseID), nil)
}

func (s *splitwiseService) UndeleteExpense(ctx context.Context, expenseID int64) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("undelete_expense/%d", expenseID), nil)
}

func (s *splitwiseService) GetGroups(ctx context.Context) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, "get_groups", nil)
}

func (s *splitwiseService) GetGroup(ctx context.Context, groupID int64) (json.RawMessage, error) {
	return s.client.GetBytes(ctx, fmt.Sprintf("get_group/%d", groupID), nil)
}

func (s *splitwiseService) CreateGroup(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "create_group", data)
}

func (s *splitwiseService) DeleteGroup(ctx context.Context, groupID int64) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("delete_group/%d", groupID), nil)
}

func (s *splitwiseService) UndeleteGroup(ctx context.Context, groupID int64) (json.RawMessage, error) {
	return s.write(ctx, fmt.Sprintf("undelete_group/%d", groupID), nil)
}

func (s *splitwiseService) AddUserToGroup(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "add_user_to_group", data)
}

func (s *splitwiseService) RemoveUserFromGroup(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return s.write(ctx, "remove_user_from_group", data)
}
