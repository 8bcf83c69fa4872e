package store

import "errors"

var (
	// ErrCategoryNotFound reports a category id with no row.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrExpenseNotFound reports an expense id with no row.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrConfigNotFound reports an environment configuration key with no row.
	ErrConfigNotFound = errors.New("environment configuration not found")
	// ErrMemoryNotFound reports a user id with no memory row.
	ErrMemoryNotFound = errors.New("memory not found")
	// ErrNothingToUpdate reports an update call with every field unset.
	ErrNothingToUpdate = errors.New("nothing to update")
)
