package tools

import (
	"context"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
)

var friendItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"email":      map[string]any{"type": "string"},
		"first_name": map[string]any{"type": "string"},
		"last_name":  map[string]any{"type": "string"},
	},
	"required": []string{"email"},
}

func friendTools() []Definition {
	return []Definition{
		{
			Name:        "get_friends",
			Description: "Get all Splitwise friends for the current user",
			New:         func() Request { return &GetFriends{} },
		},
		{
			Name:        "get_friend",
			Description: "Get details about a specific friend including balance",
			Params: []Param{
				{Name: "user_id", Type: TypeInteger, Description: "The friend's user ID", Required: true},
			},
			New: func() Request { return &GetFriend{} },
		},
		{
			Name:        "create_friend",
			Description: "Add a friend by email. If the user does not exist, first_name is required.",
			Params: []Param{
				{Name: "user_email", Type: TypeString, Description: "Friend's email address", Required: true},
				{Name: "user_first_name", Type: TypeString, Description: "Friend's first name (required if user doesn't exist)"},
				{Name: "user_last_name", Type: TypeString, Description: "Friend's last name"},
			},
			New: func() Request { return &CreateFriend{} },
		},
		{
			Name:        "create_friends",
			Description: "Add multiple friends at once. Each entry needs an email; first_name is required if the user does not exist.",
			Params: []Param{
				{Name: "users", Type: TypeArray, Description: "Array of friends to add", Required: true, Items: friendItems},
			},
			New: func() Request { return &CreateFriends{} },
		},
		{
			Name:        "delete_friend",
			Description: "Remove a friendship with a user",
			Params: []Param{
				{Name: "user_id", Type: TypeInteger, Description: "User ID of the friend to remove", Required: true},
			},
			New: func() Request { return &DeleteFriend{} },
		},
	}
}

func notificationTools() []Definition {
	return []Definition{
		{
			Name:        "get_notifications",
			Description: "Get recent notifications for the current user",
			Params: []Param{
				{Name: "updated_after", Type: TypeString, Description: "ISO 8601 datetime, only notifications after this time"},
				{Name: "limit", Type: TypeInteger, Description: "Max notifications to return (0 for maximum)"},
			},
			New: func() Request { return &GetNotifications{} },
		},
	}
}

type GetFriends struct{ noArgs }

func (r *GetFriends) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetFriends(ctx)
}

type GetFriend struct {
	noArgs
	UserID int64 `mapstructure:"user_id"`
}

func (r *GetFriend) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetFriend(ctx, r.UserID)
}

type CreateFriend struct {
	UserEmail     string  `mapstructure:"user_email"`
	UserFirstName *string `mapstructure:"user_first_name"`
	UserLastName  *string `mapstructure:"user_last_name"`
}

func (r *CreateFriend) Validate() error {
	return validateEmail(r.UserEmail, "user_email")
}

func (r *CreateFriend) Execute(ctx context.Context, env *Env) (any, error) {
	data := map[string]any{"user_email": r.UserEmail}
	putString(data, "user_first_name", r.UserFirstName)
	putString(data, "user_last_name", r.UserLastName)
	return env.Service.CreateFriend(ctx, data)
}

type CreateFriends struct {
	Users []model.NewFriend `mapstructure:"users"`
}

func (r *CreateFriends) Validate() error {
	if len(r.Users) == 0 {
		return common.NewValidationError("users", "At least 1 user is required")
	}
	for _, u := range r.Users {
		if err := validateEmail(u.Email, "email"); err != nil {
			return err
		}
	}
	return nil
}

func (r *CreateFriends) Execute(ctx context.Context, env *Env) (any, error) {
	users := make([]any, 0, len(r.Users))
	for _, u := range r.Users {
		m := map[string]any{"email": u.Email}
		if u.FirstName != "" {
			m["first_name"] = u.FirstName
		}
		if u.LastName != "" {
			m["last_name"] = u.LastName
		}
		users = append(users, m)
	}
	return env.Service.CreateFriends(ctx, map[string]any{"users": users})
}

type DeleteFriend struct {
	noArgs
	UserID int64 `mapstructure:"user_id"`
}

func (r *DeleteFriend) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.DeleteFriend(ctx, r.UserID)
}

type GetNotifications struct {
	UpdatedAfter *string `mapstructure:"updated_after"`
	Limit        *int64  `mapstructure:"limit"`
}

func (r *GetNotifications) Validate() error {
	if r.UpdatedAfter != nil {
		return validateISODate(*r.UpdatedAfter, "updated_after")
	}
	return nil
}

func (r *GetNotifications) Execute(ctx context.Context, env *Env) (any, error) {
	params := map[string]string{}
	putParam(params, "updated_after", r.UpdatedAfter)
	putIntParam(params, "limit", r.Limit)
	return env.Service.GetNotifications(ctx, params)
}
