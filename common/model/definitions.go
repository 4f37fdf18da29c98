package model

import (
	"encoding/json"
)

// JSONUnmarshal is the one place responses get decoded.
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// ----------------------------------------------------------------------
// Reference data used for name resolution
// ----------------------------------------------------------------------

// Friend is a Splitwise friend (only the fields we match on).
type Friend struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// FriendsResponse is the body of GET get_friends.
type FriendsResponse struct {
	Friends []Friend `json:"friends"`
}

// Group is a Splitwise group.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupsResponse is the body of GET get_groups.
type GroupsResponse struct {
	Groups []Group `json:"groups"`
}

// Category is an expense category; top-level categories carry their
// subcategories.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

// CategoriesResponse is the body of GET get_categories.
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// FlattenCategories lists every category followed by its subcategories, in
// source order. Each one is independently matchable.
func FlattenCategories(categories []Category) []Category {
	var out []Category
	for _, c := range categories {
		parent := c
		parent.Subcategories = nil
		out = append(out, parent)
		out = append(out, c.Subcategories...)
	}
	return out
}

// Entity is a matchable item: an id plus the name shown to users.
type Entity struct {
	ID   int64
	Name string
}

// Candidate is one ranked resolver match.
type Candidate struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	MatchScore int    `json:"match_score"`
}

// ----------------------------------------------------------------------
// Write payloads
// ----------------------------------------------------------------------

// ExpenseShare is one user's part of a custom split.
type ExpenseShare struct {
	UserID    int64  `json:"user_id" mapstructure:"user_id"`
	PaidShare string `json:"paid_share" mapstructure:"paid_share"`
	OwedShare string `json:"owed_share" mapstructure:"owed_share"`
}

// GroupMember is an initial member passed to create_group.
type GroupMember struct {
	UserID    *int64 `json:"user_id,omitempty" mapstructure:"user_id"`
	FirstName string `json:"first_name,omitempty" mapstructure:"first_name"`
	LastName  string `json:"last_name,omitempty" mapstructure:"last_name"`
	Email     string `json:"email,omitempty" mapstructure:"email"`
}

// NewFriend is one entry for create_friends.
type NewFriend struct {
	Email     string `json:"email" mapstructure:"email"`
	FirstName string `json:"first_name,omitempty" mapstructure:"first_name"`
	LastName  string `json:"last_name,omitempty" mapstructure:"last_name"`
}
