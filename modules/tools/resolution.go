package tools

import (
	"context"
	"fmt"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/modules/resolver"
)

func resolutionTools() []Definition {
	return []Definition{
		{
			Name:        "resolve_friend",
			Description: "Find a friend by name using fuzzy matching. Use this before other tools when you have a name but need an ID.",
			Params:      resolveParams("Friend name or partial name"),
			New:         func() Request { return &Resolve{kind: resolver.KindFriends} },
		},
		{
			Name:        "resolve_group",
			Description: "Find a group by name using fuzzy matching",
			Params:      resolveParams("Group name or partial name"),
			New:         func() Request { return &Resolve{kind: resolver.KindGroups} },
		},
		{
			Name:        "resolve_category",
			Description: "Find an expense category by name using fuzzy matching",
			Params:      resolveParams("Category name or partial name"),
			New:         func() Request { return &Resolve{kind: resolver.KindCategories} },
		},
	}
}

func resolveParams(queryDescription string) []Param {
	return []Param{
		{Name: "query", Type: TypeString, Description: queryDescription, Required: true},
		{Name: "threshold", Type: TypeInteger, Description: "Match score threshold 0-100 (default from config)"},
	}
}

// Resolve serves all three resolve_* tools; kind picks the list.
type Resolve struct {
	kind      resolver.Kind
	Query     string `mapstructure:"query"`
	Threshold *int   `mapstructure:"threshold"`
}

func (r *Resolve) Validate() error {
	if r.Threshold == nil {
		return nil
	}
	if err := validateMin(int64(*r.Threshold), "threshold", 0); err != nil {
		return err
	}
	return validateMax(int64(*r.Threshold), "threshold", 100)
}

func (r *Resolve) Execute(ctx context.Context, env *Env) (any, error) {
	if env.Resolver == nil {
		return nil, &common.APIError{Message: "name resolution is not configured", Kind: common.KindAPIError}
	}
	switch r.kind {
	case resolver.KindFriends:
		return env.Resolver.ResolveFriend(ctx, r.Query, r.Threshold)
	case resolver.KindGroups:
		return env.Resolver.ResolveGroup(ctx, r.Query, r.Threshold)
	case resolver.KindCategories:
		return env.Resolver.ResolveCategory(ctx, r.Query, r.Threshold)
	}
	return nil, fmt.Errorf("unknown resolve kind %q", r.kind)
}
