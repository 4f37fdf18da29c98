package tools

import (
	"context"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
)

const defaultGroupType = "other"

var memberItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"user_id":    map[string]any{"type": "integer"},
		"first_name": map[string]any{"type": "string"},
		"last_name":  map[string]any{"type": "string"},
		"email":      map[string]any{"type": "string"},
	},
}

func groupTools() []Definition {
	return []Definition{
		{
			Name:        "get_groups",
			Description: "Get all Splitwise groups for the current user",
			New:         func() Request { return &GetGroups{} },
		},
		{
			Name:        "get_group",
			Description: "Get details for a specific group including debts and members",
			Params: []Param{
				{Name: "group_id", Type: TypeInteger, Description: "The group ID", Required: true},
			},
			New: func() Request { return &GetGroup{} },
		},
		{
			Name:        "create_group",
			Description: "Create a new Splitwise group",
			Params: []Param{
				{Name: "name", Type: TypeString, Description: "Group name", Required: true},
				{Name: "group_type", Type: TypeString, Description: "Type: 'home', 'trip', 'couple', 'apartment', 'house', or 'other' (default)"},
				{Name: "simplify_by_default", Type: TypeBoolean, Description: "Simplify debts (default true)"},
				{Name: "users", Type: TypeArray, Description: "Initial group members", Items: memberItems},
			},
			New: func() Request { return &CreateGroup{} },
		},
		{
			Name:        "delete_group",
			Description: "Delete a Splitwise group",
			Params: []Param{
				{Name: "group_id", Type: TypeInteger, Description: "ID of the group to delete", Required: true},
			},
			New: func() Request { return &DeleteGroup{} },
		},
		{
			Name:        "undelete_group",
			Description: "Restore a previously deleted Splitwise group",
			Params: []Param{
				{Name: "group_id", Type: TypeInteger, Description: "ID of the group to restore", Required: true},
			},
			New: func() Request { return &UndeleteGroup{} },
		},
		{
			Name:        "add_user_to_group",
			Description: "Add a user to a Splitwise group by user_id or email",
			Params: []Param{
				{Name: "group_id", Type: TypeInteger, Description: "Group ID", Required: true},
				{Name: "user_id", Type: TypeInteger, Description: "User ID (if known)"},
				{Name: "email", Type: TypeString, Description: "Email (if user_id not provided)"},
				{Name: "first_name", Type: TypeString, Description: "First name (for new invites)"},
				{Name: "last_name", Type: TypeString, Description: "Last name (for new invites)"},
			},
			New: func() Request { return &AddUserToGroup{} },
		},
		{
			Name:        "remove_user_from_group",
			Description: "Remove a user from a Splitwise group",
			Params: []Param{
				{Name: "group_id", Type: TypeInteger, Description: "Group ID", Required: true},
				{Name: "user_id", Type: TypeInteger, Description: "User ID to remove", Required: true},
			},
			New: func() Request { return &RemoveUserFromGroup{} },
		},
	}
}

type GetGroups struct{ noArgs }

func (r *GetGroups) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetGroups(ctx)
}

type GetGroup struct {
	noArgs
	GroupID int64 `mapstructure:"group_id"`
}

func (r *GetGroup) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetGroup(ctx, r.GroupID)
}

type CreateGroup struct {
	Name              string              `mapstructure:"name"`
	GroupType         *string             `mapstructure:"group_type"`
	SimplifyByDefault *bool               `mapstructure:"simplify_by_default"`
	Users             []model.GroupMember `mapstructure:"users"`
}

func (r *CreateGroup) groupType() string {
	if r.GroupType == nil {
		return defaultGroupType
	}
	return *r.GroupType
}

func (r *CreateGroup) Validate() error {
	if err := validateOneOf(r.groupType(), "group_type", groupTypes); err != nil {
		return err
	}
	for i, u := range r.Users {
		if u.UserID == nil && u.Email == "" {
			return common.NewValidationError("users", "users[%d] must have a user_id or email", i)
		}
	}
	return nil
}

// Payload is the body sent to create_group.
func (r *CreateGroup) Payload() map[string]any {
	simplify := true
	if r.SimplifyByDefault != nil {
		simplify = *r.SimplifyByDefault
	}
	data := map[string]any{
		"name":                r.Name,
		"group_type":          r.groupType(),
		"simplify_by_default": simplify,
	}
	if r.Users != nil {
		users := make([]any, 0, len(r.Users))
		for _, u := range r.Users {
			m := map[string]any{}
			putInt(m, "user_id", u.UserID)
			for k, v := range map[string]string{"first_name": u.FirstName, "last_name": u.LastName, "email": u.Email} {
				if v != "" {
					m[k] = v
				}
			}
			users = append(users, m)
		}
		data["users"] = users
	}
	return data
}

func (r *CreateGroup) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.CreateGroup(ctx, r.Payload())
}

type DeleteGroup struct {
	noArgs
	GroupID int64 `mapstructure:"group_id"`
}

func (r *DeleteGroup) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.DeleteGroup(ctx, r.GroupID)
}

type UndeleteGroup struct {
	noArgs
	GroupID int64 `mapstructure:"group_id"`
}

func (r *UndeleteGroup) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.UndeleteGroup(ctx, r.GroupID)
}

type AddUserToGroup struct {
	GroupID   int64   `mapstructure:"group_id"`
	UserID    *int64  `mapstructure:"user_id"`
	Email     *string `mapstructure:"email"`
	FirstName *string `mapstructure:"first_name"`
	LastName  *string `mapstructure:"last_name"`
}

// An invite by email needs a full name so Splitwise can create the account.
func (r *AddUserToGroup) Validate() error {
	if r.UserID == nil && r.Email == nil {
		return common.NewValidationError("user_id", "Either user_id or email is required")
	}
	if r.UserID != nil {
		return nil
	}
	if err := validateEmail(*r.Email, "email"); err != nil {
		return err
	}
	if err := validateRequired(deref(r.FirstName), "first_name"); err != nil {
		return err
	}
	return validateRequired(deref(r.LastName), "last_name")
}

func (r *AddUserToGroup) Execute(ctx context.Context, env *Env) (any, error) {
	data := map[string]any{"group_id": r.GroupID}
	putInt(data, "user_id", r.UserID)
	putString(data, "email", r.Email)
	putString(data, "first_name", r.FirstName)
	putString(data, "last_name", r.LastName)
	return env.Service.AddUserToGroup(ctx, data)
}

type RemoveUserFromGroup struct {
	noArgs
	GroupID int64 `mapstructure:"group_id"`
	UserID  int64 `mapstructure:"user_id"`
}

func (r *RemoveUserFromGroup) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.RemoveUserFromGroup(ctx, map[string]any{
		"group_id": r.GroupID,
		"user_id":  r.UserID,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
