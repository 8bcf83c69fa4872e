// Package tools defines the tool set the agent operates with: session
// control, expense and category CRUD, system configuration and memory
// maintenance. Register wires every tool into a registry against the
// runtime's store and transport collaborators.
package tools

import (
	"context"
	"fmt"

	"github.com/zhukpm/tracky/agent"
	"github.com/zhukpm/tracky/store"
	"github.com/zhukpm/tracky/transport"
)

// Deps carries the collaborators tool implementations act on.
type Deps struct {
	Store *store.Store
	Hub   *transport.Hub
}

// sendText is the Action returned by user-facing tools: it delivers text
// to the owning user through their communication proxy.
type sendText struct {
	hub  *transport.Hub
	text string
}

func (a sendText) Perform(ctx context.Context, userID int64) error {
	return a.hub.For(userID).SendText(ctx, a.text)
}

// updateMemory is the Action returned by update_memory: it replaces the
// owning user's stored memory.
type updateMemory struct {
	store  *store.Store
	memory string
}

func (a updateMemory) Perform(ctx context.Context, userID int64) error {
	return a.store.Memories.Update(ctx, userID, a.memory)
}

// Register builds the full tool set and registers it. It fails on the
// first invalid or duplicate tool and registers nothing further.
func Register(reg *agent.Registry, deps Deps) error {
	builders := []func(Deps) (agent.Tool, error){
		newFinish,
		newAskUser,
		newFinishSessionWithReply,
		newUpdateMemory,
		newAddCategory,
		newUpdateCategory,
		newUpdateEnvironmentConfig,
		newAddExpense,
		newUpdateExpense,
		newSendCategories,
		newSendSystemConfigurations,
		newSendExpenseSingle,
		newSendExpensesList,
		newListCategories,
		newListEnvironmentConfigurations,
		newFindExpenses,
	}
	for _, build := range builders {
		t, err := build(deps)
		if err != nil {
			return err
		}
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func argString(params map[string]any, name string) (string, error) {
	s, ok := params[name].(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string", name)
	}
	return s, nil
}

func argInt64(params map[string]any, name string) (int64, error) {
	n, ok := params[name].(int)
	if !ok {
		return 0, fmt.Errorf("argument %q is not an int", name)
	}
	return int64(n), nil
}

func argFloat(params map[string]any, name string) (float64, error) {
	f, ok := params[name].(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q is not a float", name)
	}
	return f, nil
}

// argIDs converts a list argument into int64 ids. Backends deliver list
// elements as JSON numbers.
func argIDs(params map[string]any, name string) ([]int64, error) {
	list, ok := params[name].([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q is not a list", name)
	}
	ids := make([]int64, 0, len(list))
	for _, v := range list {
		switch n := v.(type) {
		case float64:
			ids = append(ids, int64(n))
		case int:
			ids = append(ids, int64(n))
		default:
			return nil, fmt.Errorf("argument %q contains a non-numeric element %v", name, v)
		}
	}
	return ids, nil
}
