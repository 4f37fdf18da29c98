package tools

import (
	"context"
	"strconv"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
)

const (
	defaultExpenseLimit = 20
	defaultCurrency     = "USD"
)

// shareItems is the schema of one custom split entry.
var shareItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"user_id":    map[string]any{"type": "integer"},
		"paid_share": map[string]any{"type": "string"},
		"owed_share": map[string]any{"type": "string"},
	},
	"required": []string{"user_id", "paid_share", "owed_share"},
}

var repeatDescription = "Repeat: 'never', 'weekly', 'fortnightly', 'monthly', or 'yearly'"

func expenseTools() []Definition {
	return []Definition{
		{
			Name:        "get_expenses",
			Description: "Get a list of expenses with optional filters",
			Params: []Param{
				{Name: "group_id", Type: TypeInteger, Description: "Filter by group ID"},
				{Name: "friend_id", Type: TypeInteger, Description: "Filter by friend ID"},
				{Name: "dated_after", Type: TypeString, Description: "ISO 8601 date, only expenses after this date"},
				{Name: "dated_before", Type: TypeString, Description: "ISO 8601 date, only expenses before this date"},
				{Name: "updated_after", Type: TypeString, Description: "ISO 8601 date, only expenses updated after"},
				{Name: "updated_before", Type: TypeString, Description: "ISO 8601 date, only expenses updated before"},
				{Name: "limit", Type: TypeInteger, Description: "Max results (default 20)"},
				{Name: "offset", Type: TypeInteger, Description: "Pagination offset (default 0)"},
			},
			New: func() Request { return &GetExpenses{} },
		},
		{
			Name:        "get_expense",
			Description: "Get detailed information about a specific expense",
			Params: []Param{
				{Name: "expense_id", Type: TypeInteger, Description: "The expense ID", Required: true},
			},
			New: func() Request { return &GetExpense{} },
		},
		{
			Name:        "create_expense",
			Description: "Create a new expense in Splitwise. Either split equally within a group, or provide custom user splits.",
			Params: []Param{
				{Name: "cost", Type: TypeString, Description: "Decimal amount as string, e.g. '25.00'", Required: true},
				{Name: "description", Type: TypeString, Description: "What the expense is for", Required: true},
				{Name: "group_id", Type: TypeInteger, Description: "Group ID (use 0 for non-group expense)", Required: true},
				{Name: "currency_code", Type: TypeString, Description: "3-letter currency code, e.g. 'USD'"},
				{Name: "date", Type: TypeString, Description: "ISO 8601 datetime, e.g. 2024-01-15T10:30:00Z"},
				{Name: "category_id", Type: TypeInteger, Description: "Expense category ID (must be a subcategory)"},
				{Name: "details", Type: TypeString, Description: "Long-form notes about the expense"},
				{Name: "repeat_interval", Type: TypeString, Description: repeatDescription},
				{Name: "split_equally", Type: TypeBoolean, Description: "Split equally among group members (default false). Requires group_id > 0"},
				{Name: "users", Type: TypeArray, Description: "Custom user splits with paid_share and owed_share as decimal strings", Items: shareItems},
			},
			New: func() Request { return &CreateExpense{} },
		},
		{
			Name:        "update_expense",
			Description: "Update an existing expense. Only include fields that are changing.",
			Params: []Param{
				{Name: "expense_id", Type: TypeInteger, Description: "ID of the expense to update", Required: true},
				{Name: "cost", Type: TypeString, Description: "New amount as decimal string"},
				{Name: "description", Type: TypeString, Description: "New description"},
				{Name: "date", Type: TypeString, Description: "New date (ISO 8601)"},
				{Name: "category_id", Type: TypeInteger, Description: "New category ID"},
				{Name: "details", Type: TypeString, Description: "New notes"},
				{Name: "repeat_interval", Type: TypeString, Description: repeatDescription},
				{Name: "currency_code", Type: TypeString, Description: "New currency code"},
				{Name: "users", Type: TypeArray, Description: "Updated user splits (overwrites all existing splits)", Items: shareItems},
			},
			New: func() Request { return &UpdateExpense{} },
		},
		{
			Name:        "delete_expense",
			Description: "Delete an expense",
			Params: []Param{
				{Name: "expense_id", Type: TypeInteger, Description: "ID of the expense to delete", Required: true},
			},
			New: func() Request { return &DeleteExpense{} },
		},
		{
			Name:        "undelete_expense",
			Description: "Restore a previously deleted expense",
			Params: []Param{
				{Name: "expense_id", Type: TypeInteger, Description: "ID of the expense to restore", Required: true},
			},
			New: func() Request { return &UndeleteExpense{} },
		},
	}
}

type GetExpenses struct {
	GroupID       *int64  `mapstructure:"group_id"`
	FriendID      *int64  `mapstructure:"friend_id"`
	DatedAfter    *string `mapstructure:"dated_after"`
	DatedBefore   *string `mapstructure:"dated_before"`
	UpdatedAfter  *string `mapstructure:"updated_after"`
	UpdatedBefore *string `mapstructure:"updated_before"`
	Limit         *int64  `mapstructure:"limit"`
	Offset        *int64  `mapstructure:"offset"`
}

type dateFilter struct {
	field string
	value *string
}

func (r *GetExpenses) dates() []dateFilter {
	return []dateFilter{
		{"dated_after", r.DatedAfter},
		{"dated_before", r.DatedBefore},
		{"updated_after", r.UpdatedAfter},
		{"updated_before", r.UpdatedBefore},
	}
}

func (r *GetExpenses) Validate() error {
	for _, d := range r.dates() {
		if d.value == nil {
			continue
		}
		if err := validateISODate(*d.value, d.field); err != nil {
			return err
		}
	}
	if r.Limit != nil {
		return validateMin(*r.Limit, "limit", 1)
	}
	return nil
}

// Params renders the query, filling in the default page.
func (r *GetExpenses) Params() map[string]string {
	params := map[string]string{
		"limit":  strconv.FormatInt(defaultExpenseLimit, 10),
		"offset": "0",
	}
	putIntParam(params, "limit", r.Limit)
	putIntParam(params, "offset", r.Offset)
	putIntParam(params, "group_id", r.GroupID)
	putIntParam(params, "friend_id", r.FriendID)
	for _, d := range r.dates() {
		putParam(params, d.field, d.value)
	}
	return params
}

func (r *GetExpenses) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetExpenses(ctx, r.Params())
}

type GetExpense struct {
	noArgs
	ExpenseID int64 `mapstructure:"expense_id"`
}

func (r *GetExpense) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetExpense(ctx, r.ExpenseID)
}

type CreateExpense struct {
	Cost           string               `mapstructure:"cost"`
	Description    string               `mapstructure:"description"`
	GroupID        int64                `mapstructure:"group_id"`
	CurrencyCode   *string              `mapstructure:"currency_code"`
	Date           *string              `mapstructure:"date"`
	CategoryID     *int64               `mapstructure:"category_id"`
	Details        *string              `mapstructure:"details"`
	RepeatInterval *string              `mapstructure:"repeat_interval"`
	SplitEqually   bool                 `mapstructure:"split_equally"`
	Users          []model.ExpenseShare `mapstructure:"users"`
}

func (r *CreateExpense) currency() string {
	if r.CurrencyCode == nil {
		return defaultCurrency
	}
	return *r.CurrencyCode
}

func (r *CreateExpense) Validate() error {
	if err := validateDecimalAmount(r.Cost, "cost"); err != nil {
		return err
	}
	if err := validateCurrencyCode(r.currency(), "currency_code"); err != nil {
		return err
	}
	if r.Date != nil {
		if err := validateISODate(*r.Date, "date"); err != nil {
			return err
		}
	}
	if r.RepeatInterval != nil {
		if err := validateOneOf(*r.RepeatInterval, "repeat_interval", repeatIntervals); err != nil {
			return err
		}
	}
	if r.SplitEqually && r.GroupID == 0 {
		return common.NewValidationError("group_id", "group_id must be > 0 when splitting equally")
	}
	return nil
}

// Payload is the body sent to create_expense.
func (r *CreateExpense) Payload() map[string]any {
	data := map[string]any{
		"cost":          r.Cost,
		"description":   r.Description,
		"group_id":      r.GroupID,
		"currency_code": r.currency(),
	}
	if r.SplitEqually {
		data["split_equally"] = true
	}
	putString(data, "date", r.Date)
	putInt(data, "category_id", r.CategoryID)
	putString(data, "details", r.Details)
	putString(data, "repeat_interval", r.RepeatInterval)
	if r.Users != nil {
		data["users"] = sharesPayload(r.Users)
	}
	return data
}

func (r *CreateExpense) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.CreateExpense(ctx, r.Payload())
}

type UpdateExpense struct {
	ExpenseID      int64                `mapstructure:"expense_id"`
	Cost           *string              `mapstructure:"cost"`
	Description    *string              `mapstructure:"description"`
	Date           *string              `mapstructure:"date"`
	CategoryID     *int64               `mapstructure:"category_id"`
	Details        *string              `mapstructure:"details"`
	RepeatInterval *string              `mapstructure:"repeat_interval"`
	CurrencyCode   *string              `mapstructure:"currency_code"`
	Users          []model.ExpenseShare `mapstructure:"users"`
}

func (r *UpdateExpense) Validate() error {
	if r.Cost != nil {
		if err := validateDecimalAmount(*r.Cost, "cost"); err != nil {
			return err
		}
	}
	if r.Date != nil {
		if err := validateISODate(*r.Date, "date"); err != nil {
			return err
		}
	}
	if r.CurrencyCode != nil {
		if err := validateCurrencyCode(*r.CurrencyCode, "currency_code"); err != nil {
			return err
		}
	}
	if r.RepeatInterval != nil {
		return validateOneOf(*r.RepeatInterval, "repeat_interval", repeatIntervals)
	}
	return nil
}

func (r *UpdateExpense) Execute(ctx context.Context, env *Env) (any, error) {
	data := map[string]any{}
	putString(data, "cost", r.Cost)
	putString(data, "description", r.Description)
	putString(data, "date", r.Date)
	putInt(data, "category_id", r.CategoryID)
	putString(data, "details", r.Details)
	putString(data, "repeat_interval", r.RepeatInterval)
	putString(data, "currency_code", r.CurrencyCode)
	if r.Users != nil {
		data["users"] = sharesPayload(r.Users)
	}
	return env.Service.UpdateExpense(ctx, r.ExpenseID, data)
}

type DeleteExpense struct {
	noArgs
	ExpenseID int64 `mapstructure:"expense_id"`
}

func (r *DeleteExpense) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.DeleteExpense(ctx, r.ExpenseID)
}

type UndeleteExpense struct {
	noArgs
	ExpenseID int64 `mapstructure:"expense_id"`
}

func (r *UndeleteExpense) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.UndeleteExpense(ctx, r.ExpenseID)
}

func sharesPayload(shares []model.ExpenseShare) []any {
	out := make([]any, 0, len(shares))
	for _, s := range shares {
		out = append(out, map[string]any{
			"user_id":    s.UserID,
			"paid_share": s.PaidShare,
			"owed_share": s.OwedShare,
		})
	}
	return out
}
