package tools

import (
	"context"
)

func userTools() []Definition {
	return []Definition{
		{
			Name:        "get_current_user",
			Description: "Get information about the currently authenticated Splitwise user",
			New:         func() Request { return &GetCurrentUser{} },
		},
		{
			Name:        "get_user",
			Description: "Get information about a specific Splitwise user by ID",
			Params: []Param{
				{Name: "user_id", Type: TypeInteger, Description: "The user's ID", Required: true},
			},
			New: func() Request { return &GetUser{} },
		},
		{
			Name:        "update_user",
			Description: "Update a user profile (can only update the current user)",
			Params: []Param{
				{Name: "user_id", Type: TypeInteger, Description: "The user's ID", Required: true},
				{Name: "first_name", Type: TypeString, Description: "New first name"},
				{Name: "last_name", Type: TypeString, Description: "New last name"},
				{Name: "email", Type: TypeString, Description: "New email address"},
				{Name: "default_currency", Type: TypeString, Description: "Default currency code, e.g. 'USD'"},
				{Name: "locale", Type: TypeString, Description: "Locale code, e.g. 'en'"},
			},
			New: func() Request { return &UpdateUser{} },
		},
	}
}

type GetCurrentUser struct{ noArgs }

func (r *GetCurrentUser) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetCurrentUser(ctx)
}

type GetUser struct {
	noArgs
	UserID int64 `mapstructure:"user_id"`
}

func (r *GetUser) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetUser(ctx, r.UserID)
}

type UpdateUser struct {
	UserID          int64   `mapstructure:"user_id"`
	FirstName       *string `mapstructure:"first_name"`
	LastName        *string `mapstructure:"last_name"`
	Email           *string `mapstructure:"email"`
	DefaultCurrency *string `mapstructure:"default_currency"`
	Locale          *string `mapstructure:"locale"`
}

func (r *UpdateUser) Validate() error {
	if r.Email != nil {
		if err := validateEmail(*r.Email, "email"); err != nil {
			return err
		}
	}
	if r.DefaultCurrency != nil {
		if err := validateCurrencyCode(*r.DefaultCurrency, "default_currency"); err != nil {
			return err
		}
	}
	return nil
}

func (r *UpdateUser) Execute(ctx context.Context, env *Env) (any, error) {
	data := map[string]any{}
	putString(data, "first_name", r.FirstName)
	putString(data, "last_name", r.LastName)
	putString(data, "email", r.Email)
	putString(data, "default_currency", r.DefaultCurrency)
	putString(data, "locale", r.Locale)
	return env.Service.UpdateUser(ctx, r.UserID, data)
}
