package splitwise

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guarzo/splitwise-mcp/common/model"
)

// Categories and currencies change rarely, so they are memoized for the
// service's reference TTL. Friends and groups are fetched fresh here; the
// resolver keeps its own short-lived copy.

const (
	categoriesKey = "categories"
	currenciesKey = "currencies"
)

func (s *splitwiseService) GetCategories(ctx context.Context) (json.RawMessage, error) {
	return s.refs.Fetch(categoriesKey, func() (json.RawMessage, error) {
		return s.client.GetBytes(ctx, "get_categories", nil)
	})
}

func (s *splitwiseService) GetCurrencies(ctx context.Context) (json.RawMessage, error) {
	return s.refs.Fetch(currenciesKey, func() (json.RawMessage, error) {
		return s.client.GetBytes(ctx, "get_currencies", nil)
	})
}

// ClearCache forgets memoized reference data.
func (s *splitwiseService) ClearCache() {
	s.refs.Clear()
}

// Friends lists the current user's friends.
func (s *splitwiseService) Friends(ctx context.Context) ([]model.Friend, error) {
	var resp model.FriendsResponse
	if err := s.client.GetJSON(ctx, "get_friends", &resp, nil); err != nil {
		return nil, err
	}
	return resp.Friends, nil
}

// Groups lists the current user's groups.
func (s *splitwiseService) Groups(ctx context.Context) ([]model.Group, error) {
	var resp model.GroupsResponse
	if err := s.client.GetJSON(ctx, "get_groups", &resp, nil); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

// Categories lists top-level categories with their subcategories.
func (s *splitwiseService) Categories(ctx context.Context) ([]model.Category, error) {
	data, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	var resp model.CategoriesResponse
	if err := model.JSONUnmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return resp.Categories, nil
}
