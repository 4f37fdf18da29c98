// Package resolver turns free-text names into ranked friend, group and
// category matches.
package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
)

// DataSource supplies the reference lists the resolver matches against.
// Categories returns top-level categories with their subcategories nested.
type DataSource interface {
	Friends(ctx context.Context) ([]model.Friend, error)
	Groups(ctx context.Context) ([]model.Group, error)
	Categories(ctx context.Context) ([]model.Category, error)
}

// Kind names one of the cached reference lists.
type Kind string

const (
	KindFriends    Kind = "friends"
	KindGroups     Kind = "groups"
	KindCategories Kind = "categories"
)

const (
	DefaultThreshold = 70
	DefaultCacheTTL  = 5 * time.Minute
)

// Resolver matches queries against friends, groups and categories. Each list
// is fetched once per cache TTL and shared by all callers as a read-only
// snapshot.
type Resolver struct {
	source    DataSource
	threshold int
	cache     *common.ExpiringCache[Kind, []model.Entity]
}

// NewResolver builds a Resolver with its own cache. threshold is the default
// minimum score (0-100).
func NewResolver(source DataSource, threshold int, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		source:    source,
		threshold: threshold,
		cache:     common.NewExpiringCache[Kind, []model.Entity](cacheTTL),
	}
}

// Threshold is the score used when a lookup does not pass one.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Cache exposes the underlying cache, mostly for tests.
func (r *Resolver) Cache() *common.ExpiringCache[Kind, []model.Entity] {
	return r.cache
}

// Clear forgets all cached lists.
func (r *Resolver) Clear() {
	r.cache.Clear()
}

// ResolveFriend matches query against "first last" of every friend.
func (r *Resolver) ResolveFriend(ctx context.Context, query string, threshold *int) ([]model.Candidate, error) {
	return r.resolve(ctx, KindFriends, query, threshold)
}

// ResolveGroup matches query against group names.
func (r *Resolver) ResolveGroup(ctx context.Context, query string, threshold *int) ([]model.Candidate, error) {
	return r.resolve(ctx, KindGroups, query, threshold)
}

// ResolveCategory matches query against every category and subcategory.
func (r *Resolver) ResolveCategory(ctx context.Context, query string, threshold *int) ([]model.Candidate, error) {
	return r.resolve(ctx, KindCategories, query, threshold)
}

func (r *Resolver) resolve(ctx context.Context, kind Kind, query string, threshold *int) ([]model.Candidate, error) {
	minScore := r.threshold
	if threshold != nil {
		minScore = *threshold
	}

	entities, err := r.cache.Fetch(kind, func() ([]model.Entity, error) {
		return r.load(ctx, kind)
	})
	if err != nil {
		return nil, err
	}
	return Match(query, entities, minScore), nil
}

func (r *Resolver) load(ctx context.Context, kind Kind) ([]model.Entity, error) {
	switch kind {
	case KindFriends:
		friends, err := r.source.Friends(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]model.Entity, 0, len(friends))
		for _, f := range friends {
			out = append(out, model.Entity{ID: f.ID, Name: FriendName(f)})
		}
		return out, nil

	case KindGroups:
		groups, err := r.source.Groups(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]model.Entity, 0, len(groups))
		for _, g := range groups {
			out = append(out, model.Entity{ID: g.ID, Name: g.Name})
		}
		return out, nil

	default:
		categories, err := r.source.Categories(ctx)
		if err != nil {
			return nil, err
		}
		flat := model.FlattenCategories(categories)
		out := make([]model.Entity, 0, len(flat))
		for _, c := range flat {
			out = append(out, model.Entity{ID: c.ID, Name: c.Name})
		}
		return out, nil
	}
}

// FriendName is the display name of a friend: first and last name joined by
// a space and trimmed.
func FriendName(f model.Friend) string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}
