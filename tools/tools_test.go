package tools

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukpm/tracky/agent"
	"github.com/zhukpm/tracky/store"
	"github.com/zhukpm/tracky/transport"
)

type captureMessenger struct {
	sent []string
}

func (m *captureMessenger) SendText(_ context.Context, _ int64, text string) error {
	m.sent = append(m.sent, text)
	return nil
}

type fixture struct {
	registry  *agent.Registry
	store     *store.Store
	messenger *captureMessenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tracky.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	messenger := &captureMessenger{}
	hub := transport.NewHub(messenger, slog.New(slog.NewTextHandler(io.Discard, nil)))

	registry := agent.NewRegistry()
	require.NoError(t, Register(registry, Deps{Store: s, Hub: hub}))

	return &fixture{registry: registry, store: s, messenger: messenger}
}

// invoke runs a registered tool and performs a returned Action for user 7.
func (f *fixture) invoke(t *testing.T, name string, params map[string]any) any {
	t.Helper()
	tool, err := f.registry.Lookup(name)
	require.NoError(t, err)
	value, err := tool.Invoke(context.Background(), params)
	require.NoError(t, err)
	if action, ok := value.(agent.Action); ok {
		require.NoError(t, action.Perform(context.Background(), 7))
	}
	return value
}

func TestRegisterToolSet(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 16, f.registry.Count())

	main, err := f.registry.List(agent.DefaultScope)
	require.NoError(t, err)
	mainNames := make(map[string]bool)
	for _, tool := range main {
		mainNames[tool.Name] = true
	}
	assert.True(t, mainNames["ask_user"])
	assert.True(t, mainNames["add_expense"])
	// Memory-scope tools are excluded from the main scope.
	assert.False(t, mainNames["finish"])
	assert.False(t, mainNames["update_memory"])

	memory, err := f.registry.List("memory")
	require.NoError(t, err)
	assert.Len(t, memory, 2)

	terminating := map[string]bool{
		"finish": true, "finish_session_with_reply": true, "update_memory": true,
		"add_category": true, "update_category": true, "update_environment_config": true,
		"add_expense": true, "update_expense": true, "send_categories": true,
		"send_system_configurations": true, "send_expense_single": true,
		"send_expenses_list": true,
	}
	all, err := f.registry.List()
	require.NoError(t, err)
	for _, tool := range all {
		assert.Equal(t, terminating[tool.Name], tool.Terminating, "tool %s", tool.Name)
	}
}

func TestAskUserSendsMessage(t *testing.T) {
	f := newFixture(t)
	f.invoke(t, "ask_user", map[string]any{"message": "which currency?"})
	assert.Equal(t, []string{"which currency?"}, f.messenger.sent)
}

func TestAddCategoryAndExpenseFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoke(t, "add_category", map[string]any{
		"name":        "groceries",
		"description": "Food and household items.",
	})
	categories, err := f.store.Categories.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	f.invoke(t, "add_expense", map[string]any{
		"category_id": int(categories[0].ID),
		"currency":    "EUR",
		"amount":      12.5,
		"comment":     "weekly shop",
	})
	expenses, err := f.store.Expenses.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 12.5, expenses[0].Amount)

	// One message per terminating tool was delivered to the user.
	require.Len(t, f.messenger.sent, 2)
	assert.Contains(t, f.messenger.sent[0], "groceries")
	assert.Contains(t, f.messenger.sent[1], "12.5 EUR")
}

func TestUpdateExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.store.Categories.Add(ctx, "groceries", "Food.")
	require.NoError(t, err)
	expense, err := f.store.Expenses.Add(ctx, category.ID, "EUR", 10, "shop")
	require.NoError(t, err)

	when := time.Date(2025, 5, 30, 16, 54, 43, 0, time.UTC)
	f.invoke(t, "update_expense", map[string]any{
		"expense_id":  int(expense.ID),
		"category_id": int(category.ID),
		"date":        when,
		"currency":    "USD",
		"amount":      15.0,
		"comment":     "shop",
	})

	updated, err := f.store.Expenses.Get(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD", updated.Currency)
	assert.Equal(t, 15.0, updated.Amount)
	assert.True(t, updated.Date.Equal(when))
}

func TestUpdateMemoryAction(t *testing.T) {
	f := newFixture(t)
	f.invoke(t, "update_memory", map[string]any{"new_memory": "prefers EUR"})

	memory, err := f.store.Memories.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "prefers EUR", memory)
}

func TestListAndFindTools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.store.Categories.Add(ctx, "groceries", "Food.")
	require.NoError(t, err)
	_, err = f.store.Expenses.Add(ctx, category.ID, "EUR", 10, "weekly shop")
	require.NoError(t, err)

	listed := f.invoke(t, "list_categories", map[string]any{}).(string)
	assert.Contains(t, listed, "groceries")

	found := f.invoke(t, "find_expenses", map[string]any{
		"category_id": int(category.ID),
		"date_from":   time.Now().UTC().Add(-time.Hour),
		"date_to":     time.Now().UTC().Add(time.Hour),
		"currency":    "EUR",
		"amount_from": 0.0,
		"amount_to":   100.0,
		"limit":       10,
	}).(string)
	assert.Contains(t, found, "weekly shop")

	empty := f.invoke(t, "find_expenses", map[string]any{
		"category_id": int(category.ID),
		"date_from":   time.Now().UTC().Add(-time.Hour),
		"date_to":     time.Now().UTC().Add(time.Hour),
		"currency":    "USD",
		"amount_from": 0.0,
		"amount_to":   100.0,
		"limit":       10,
	}).(string)
	assert.Contains(t, empty, "no expenses found")
}

func TestSendExpensesList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.store.Categories.Add(ctx, "groceries", "Food.")
	require.NoError(t, err)
	first, err := f.store.Expenses.Add(ctx, category.ID, "EUR", 10, "one")
	require.NoError(t, err)
	second, err := f.store.Expenses.Add(ctx, category.ID, "EUR", 20, "two")
	require.NoError(t, err)

	f.invoke(t, "send_expenses_list", map[string]any{
		"expense_ids": []any{float64(first.ID), float64(second.ID)},
	})
	require.Len(t, f.messenger.sent, 1)
	assert.Contains(t, f.messenger.sent[0], "one")
	assert.Contains(t, f.messenger.sent[0], "two")
}
