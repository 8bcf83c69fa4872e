package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/zhukpm/tracky/agent"
	"github.com/zhukpm/tracky/prompt"
	"github.com/zhukpm/tracky/store"
)

func argTime(params map[string]any, name string) (time.Time, error) {
	t, ok := params[name].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("argument %q is not a datetime", name)
	}
	return t, nil
}

func newUpdateMemory(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"update_memory",
		"Updates system memory about the current user with the new memory. "+
			"Note that the new memory replaces the previous one; so any useful details "+
			"from the previous memory should be preserved.",
		[]agent.ToolArgument{
			{Name: "new_memory", Type: agent.ArgString, Description: "A new memory to save instead of the previous one"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			memory, err := argString(params, "new_memory")
			if err != nil {
				return nil, err
			}
			return updateMemory{store: deps.Store, memory: memory}, nil
		},
		agent.Terminating(),
		agent.Scopes("memory"),
	)
}

func newAddCategory(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"add_category",
		"Adds a new category to the system. This new category must have a unique name.",
		[]agent.ToolArgument{
			{Name: "name", Type: agent.ArgString, Description: "The name of the new category. Must differ from existing categories."},
			{Name: "description", Type: agent.ArgString, Description: "The description of the new category. Should reflect what this category is used for, with some examples."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			name, err := argString(params, "name")
			if err != nil {
				return nil, err
			}
			description, err := argString(params, "description")
			if err != nil {
				return nil, err
			}
			category, err := deps.Store.Categories.Add(ctx, name, description)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("add_category", category)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newUpdateCategory(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"update_category",
		"Updates an existing category with the new name and description.",
		[]agent.ToolArgument{
			{Name: "category_id", Type: agent.ArgInt, Description: "The ID of the category to be updated."},
			{Name: "new_name", Type: agent.ArgString, Description: "The new name of the category. If name is not updated - must be the current name."},
			{Name: "new_description", Type: agent.ArgString, Description: "The new description of the category. If description is not updated - must be the current description."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			id, err := argInt64(params, "category_id")
			if err != nil {
				return nil, err
			}
			name, err := argString(params, "new_name")
			if err != nil {
				return nil, err
			}
			description, err := argString(params, "new_description")
			if err != nil {
				return nil, err
			}
			category, err := deps.Store.Categories.Update(ctx, id, &name, &description)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("update_category", category)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newUpdateEnvironmentConfig(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"update_environment_config",
		"Updates an existing environment configuration with the new value for the given key.",
		[]agent.ToolArgument{
			{Name: "key", Type: agent.ArgString, Description: "Key of an environment configuration to be updated. Must be present."},
			{Name: "value", Type: agent.ArgString, Description: "New value of the environment configuration for the given key."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			key, err := argString(params, "key")
			if err != nil {
				return nil, err
			}
			value, err := argString(params, "value")
			if err != nil {
				return nil, err
			}
			config, err := deps.Store.EnvConfig.Update(ctx, key, value)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("update_environment_config", config)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newAddExpense(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"add_expense",
		"Adds a new expense to the system. This new expense must correspond to an existing category.",
		[]agent.ToolArgument{
			{Name: "category_id", Type: agent.ArgInt, Description: "The ID of the category for the new expense."},
			{Name: "currency", Type: agent.ArgString, Description: "The currency of the expense. If not provided, the default value must be used."},
			{Name: "amount", Type: agent.ArgFloat, Description: "The amount of the expense. Must be greater than or equal to 0."},
			{Name: "comment", Type: agent.ArgString, Description: "An optional comment to the expense."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			categoryID, err := argInt64(params, "category_id")
			if err != nil {
				return nil, err
			}
			currency, err := argString(params, "currency")
			if err != nil {
				return nil, err
			}
			amount, err := argFloat(params, "amount")
			if err != nil {
				return nil, err
			}
			comment, err := argString(params, "comment")
			if err != nil {
				return nil, err
			}
			expense, err := deps.Store.Expenses.Add(ctx, categoryID, currency, amount, comment)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("add_expense", expense)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newUpdateExpense(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"update_expense",
		"Updates an existing expense by id. Characteristics that are not changing must be provided as well; "+
			"they must equal to their current values.",
		[]agent.ToolArgument{
			{Name: "expense_id", Type: agent.ArgInt, Description: "The ID of the expense to be updated."},
			{Name: "category_id", Type: agent.ArgInt, Description: "The ID of the category for the expense. Must be present. Must equal to the current one if it is not changing by user request."},
			{Name: "date", Type: agent.ArgDateTime, Description: "The new datetime of the expense. Must equal to the current one if it is not changing by user request."},
			{Name: "currency", Type: agent.ArgString, Description: "The new currency of the expense. Must equal to the current one if it is not changing by user request."},
			{Name: "amount", Type: agent.ArgFloat, Description: "The new amount of the expense. Must be greater than or equal to 0. Must equal to the current one if it is not changing by user request."},
			{Name: "comment", Type: agent.ArgString, Description: "The new comment of the expense. Must equal to the current one if it is not changing by user request."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			expenseID, err := argInt64(params, "expense_id")
			if err != nil {
				return nil, err
			}
			categoryID, err := argInt64(params, "category_id")
			if err != nil {
				return nil, err
			}
			date, err := argTime(params, "date")
			if err != nil {
				return nil, err
			}
			currency, err := argString(params, "currency")
			if err != nil {
				return nil, err
			}
			amount, err := argFloat(params, "amount")
			if err != nil {
				return nil, err
			}
			comment, err := argString(params, "comment")
			if err != nil {
				return nil, err
			}
			expense, err := deps.Store.Expenses.Update(ctx, expenseID, store.ExpenseUpdate{
				CategoryID: &categoryID,
				Date:       &date,
				Currency:   &currency,
				Amount:     &amount,
				Comment:    &comment,
			})
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("update_expense", expense)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newSendCategories(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"send_categories",
		"Sends a list of all available categories to the user.",
		nil,
		func(ctx context.Context, params map[string]any) (any, error) {
			categories, err := deps.Store.Categories.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("send_categories", categories)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newSendSystemConfigurations(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"send_system_configurations",
		"Sends a list of all current system configurations to the user.",
		nil,
		func(ctx context.Context, params map[string]any) (any, error) {
			configs, err := deps.Store.EnvConfig.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("send_system_configurations", configs)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newSendExpenseSingle(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"send_expense_single",
		"Sends a single expense to the user (whole information about this expense).",
		[]agent.ToolArgument{
			{Name: "expense_id", Type: agent.ArgInt, Description: "The ID of the expense to send to the user."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			id, err := argInt64(params, "expense_id")
			if err != nil {
				return nil, err
			}
			expense, err := deps.Store.Expenses.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("send_expense_single", expense)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newSendExpensesList(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"send_expenses_list",
		"Sends multiple expenses to the user (whole information about expenses).",
		[]agent.ToolArgument{
			{Name: "expense_ids", Type: agent.ArgList, Description: "The list of IDs (integers) of the expenses to send to the user."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			ids, err := argIDs(params, "expense_ids")
			if err != nil {
				return nil, err
			}
			expenses, err := deps.Store.Expenses.GetMany(ctx, ids)
			if err != nil {
				return nil, err
			}
			text, err := prompt.Render("send_expenses", expenses)
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: text}, nil
		},
		agent.Terminating(),
	)
}

func newListCategories(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"list_categories",
		"Loads the list of all available expense categories.",
		nil,
		func(ctx context.Context, params map[string]any) (any, error) {
			categories, err := deps.Store.Categories.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			return prompt.Render("list_categories", categories)
		},
	)
}

func newListEnvironmentConfigurations(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"list_environment_configurations",
		"Loads the list of all environment configurations for the current user.",
		nil,
		func(ctx context.Context, params map[string]any) (any, error) {
			configs, err := deps.Store.EnvConfig.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			return prompt.Render("list_environment_configurations", configs)
		},
	)
}

func newFindExpenses(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"find_expenses",
		"Finds a list of expenses in the database according to given filters.",
		[]agent.ToolArgument{
			{Name: "category_id", Type: agent.ArgInt, Description: "The ID of the category for the expenses."},
			{Name: "date_from", Type: agent.ArgDateTime, Description: "The datetime from which to find expenses."},
			{Name: "date_to", Type: agent.ArgDateTime, Description: "The datetime until which to find expenses."},
			{Name: "currency", Type: agent.ArgString, Description: "The currency of expenses to find."},
			{Name: "amount_from", Type: agent.ArgFloat, Description: "The amount from which to find expenses."},
			{Name: "amount_to", Type: agent.ArgFloat, Description: "The amount to which to find expenses."},
			{Name: "limit", Type: agent.ArgInt, Description: "Limit - maximum number of expenses to find. Put a bigger value if you want to find all."},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			categoryID, err := argInt64(params, "category_id")
			if err != nil {
				return nil, err
			}
			dateFrom, err := argTime(params, "date_from")
			if err != nil {
				return nil, err
			}
			dateTo, err := argTime(params, "date_to")
			if err != nil {
				return nil, err
			}
			currency, err := argString(params, "currency")
			if err != nil {
				return nil, err
			}
			amountFrom, err := argFloat(params, "amount_from")
			if err != nil {
				return nil, err
			}
			amountTo, err := argFloat(params, "amount_to")
			if err != nil {
				return nil, err
			}
			limit, err := argInt64(params, "limit")
			if err != nil {
				return nil, err
			}
			expenses, err := deps.Store.Expenses.Find(ctx, store.Filter{
				CategoryID: &categoryID,
				DateFrom:   &dateFrom,
				DateTo:     &dateTo,
				Currencies: []string{currency},
				AmountFrom: &amountFrom,
				AmountTo:   &amountTo,
				Limit:      int(limit),
			})
			if err != nil {
				return nil, err
			}
			return prompt.Render("list_expenses", expenses)
		},
	)
}
