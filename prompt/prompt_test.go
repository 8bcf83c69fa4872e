package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukpm/tracky/store"
	"github.com/zhukpm/tracky/transport"
)

func TestSystemPromptRendersAllSections(t *testing.T) {
	now := time.Date(2025, 5, 30, 16, 54, 0, 0, time.UTC)
	out, err := System(SystemPromptData{
		Now: now,
		EnvConfigs: []store.EnvConfig{
			{Key: "default_currency", Value: "EUR", Description: "Currency assumed when none is given."},
		},
		Categories: []store.Category{
			{ID: 1, Name: "groceries", Description: "Food and household items."},
		},
		Latest: []store.Expense{
			{
				ID:       3,
				Category: store.Category{ID: 1, Name: "groceries"},
				Date:     time.Date(2025, 5, 29, 12, 0, 0, 0, time.UTC),
				Currency: "EUR",
				Amount:   12.5,
				Comment:  "weekly shop",
			},
		},
		Dialog: []transport.ChatTurn{
			{Role: "user", Message: "hi"},
			{Role: "agent", Message: "hello"},
		},
		Memory: "prefers EUR",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Friday, May 30, 2025 16:54")
	assert.Contains(t, out, "default_currency = EUR")
	assert.Contains(t, out, "[1] groceries: Food and household items.")
	assert.Contains(t, out, "29-05-2025 12:00:00 12.5 EUR (groceries): weekly shop")
	assert.Contains(t, out, "[user]: hi")
	assert.Contains(t, out, "[agent]: hello")
	assert.Contains(t, out, "prefers EUR")
}

func TestSystemPromptEmptySections(t *testing.T) {
	out, err := System(SystemPromptData{Now: time.Now()})
	require.NoError(t, err)

	assert.Contains(t, out, "(no recent dialog)")
	assert.Contains(t, out, "(empty)")
}

func TestMessageTemplates(t *testing.T) {
	category := store.Category{ID: 2, Name: "transport", Description: "Getting around."}

	added, err := Render("add_category", category)
	require.NoError(t, err)
	assert.Contains(t, added, "transport")
	assert.Contains(t, added, "ID: 2")

	expense := store.Expense{
		ID:       5,
		Category: category,
		Date:     time.Date(2025, 5, 30, 16, 54, 43, 0, time.UTC),
		Currency: "EUR",
		Amount:   7.5,
	}
	single, err := Render("send_expense_single", expense)
	require.NoError(t, err)
	assert.Contains(t, single, "Expense 5")
	assert.Contains(t, single, "30-05-2025 16:54:43")
	assert.Contains(t, single, "7.5 EUR")
	// No comment line for an empty comment.
	assert.NotContains(t, single, "Comment:")

	empty, err := Render("send_expenses", []store.Expense{})
	require.NoError(t, err)
	assert.Contains(t, empty, "No expenses found.")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nope", nil)
	require.Error(t, err)
}
