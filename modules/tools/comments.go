package tools

import (
	"context"
)

func commentTools() []Definition {
	return []Definition{
		{
			Name:        "get_comments",
			Description: "Get all comments on an expense",
			Params: []Param{
				{Name: "expense_id", Type: TypeInteger, Description: "The expense ID", Required: true},
			},
			New: func() Request { return &GetComments{} },
		},
		{
			Name:        "create_comment",
			Description: "Add a comment to an expense",
			Params: []Param{
				{Name: "expense_id", Type: TypeInteger, Description: "The expense ID", Required: true},
				{Name: "content", Type: TypeString, Description: "Comment text", Required: true},
			},
			New: func() Request { return &CreateComment{} },
		},
		{
			Name:        "delete_comment",
			Description: "Delete a comment",
			Params: []Param{
				{Name: "comment_id", Type: TypeInteger, Description: "The comment ID", Required: true},
			},
			New: func() Request { return &DeleteComment{} },
		},
	}
}

type GetComments struct {
	noArgs
	ExpenseID int64 `mapstructure:"expense_id"`
}

func (r *GetComments) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetComments(ctx, r.ExpenseID)
}

type CreateComment struct {
	noArgs
	ExpenseID int64  `mapstructure:"expense_id"`
	Content   string `mapstructure:"content"`
}

func (r *CreateComment) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.CreateComment(ctx, map[string]any{
		"expense_id": r.ExpenseID,
		"content":    r.Content,
	})
}

type DeleteComment struct {
	noArgs
	CommentID int64 `mapstructure:"comment_id"`
}

func (r *DeleteComment) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.DeleteComment(ctx, r.CommentID)
}
