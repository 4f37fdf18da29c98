package tools

import (
	"context"
)

func referenceTools() []Definition {
	return []Definition{
		{
			Name:        "get_categories",
			Description: "Get all Splitwise expense categories and subcategories (cached 24h)",
			New:         func() Request { return &GetCategories{} },
		},
		{
			Name:        "get_currencies",
			Description: "Get all supported currencies with codes and symbols (cached 24h)",
			New:         func() Request { return &GetCurrencies{} },
		},
	}
}

type GetCategories struct{ noArgs }

func (r *GetCategories) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetCategories(ctx)
}

type GetCurrencies struct{ noArgs }

func (r *GetCurrencies) Execute(ctx context.Context, env *Env) (any, error) {
	return env.Service.GetCurrencies(ctx)
}
