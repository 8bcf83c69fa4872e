package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Expense is one recorded spending entry. Category is always populated
// from the owning category row.
type Expense struct {
	ID       int64
	Category Category
	Date     time.Time
	Currency string
	Amount   float64
	Comment  string
}

// ExpenseUpdate names the fields an expense update may change. Nil fields
// are left untouched; at least one must be set.
type ExpenseUpdate struct {
	CategoryID *int64
	Date       *time.Time
	Currency   *string
	Amount     *float64
	Comment    *string
}

// Filter narrows an expense search. Zero-valued fields are ignored.
type Filter struct {
	CategoryID *int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Currencies []string
	AmountFrom *float64
	AmountTo   *float64
	// CommentLike is a substring match against the comment, wrapped in
	// SQL wildcards unless the caller supplies its own.
	CommentLike string
	Limit       int
}

// ExpenseStore manages expense records.
type ExpenseStore struct {
	db *sql.DB
}

const expenseColumns = `e.id, e.date, e.currency, e.amount, e.comment,
	c.id, c.name, c.description`

func scanExpense(row interface{ Scan(...any) error }) (Expense, error) {
	var (
		e    Expense
		date string
	)
	err := row.Scan(&e.ID, &date, &e.Currency, &e.Amount, &e.Comment,
		&e.Category.ID, &e.Category.Name, &e.Category.Description)
	if err != nil {
		return Expense{}, err
	}
	e.Date, err = decodeDate(date)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

// Get returns the expense with the given id.
func (s *ExpenseStore) Get(ctx context.Context, id int64) (Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+`
		 FROM expense e JOIN category c ON c.id = e.category_id
		 WHERE e.id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Expense{}, fmt.Errorf("%w: id %d", ErrExpenseNotFound, id)
	}
	if err != nil {
		return Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// GetMany returns the expenses matching the given ids, ordered by id.
// Missing ids are silently skipped.
func (s *ExpenseStore) GetMany(ctx context.Context, ids []int64) ([]Expense, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.query(ctx,
		`SELECT `+expenseColumns+`
		 FROM expense e JOIN category c ON c.id = e.category_id
		 WHERE e.id IN (`+placeholders+`) ORDER BY e.id`, args...)
}

// GetAll returns every expense ordered by id.
func (s *ExpenseStore) GetAll(ctx context.Context) ([]Expense, error) {
	return s.query(ctx,
		`SELECT `+expenseColumns+`
		 FROM expense e JOIN category c ON c.id = e.category_id
		 ORDER BY e.id`)
}

// Add records an expense dated now against an existing category.
func (s *ExpenseStore) Add(ctx context.Context, categoryID int64, currency string, amount float64, comment string) (Expense, error) {
	var category Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM category WHERE id = ?`, categoryID,
	).Scan(&category.ID, &category.Name, &category.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Expense{}, fmt.Errorf("%w: id %d", ErrCategoryNotFound, categoryID)
	}
	if err != nil {
		return Expense{}, fmt.Errorf("add expense: %w", err)
	}

	date := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expense (category_id, date, currency, amount, comment)
		 VALUES (?, ?, ?, ?, ?)`,
		categoryID, encodeDate(date), currency, amount, comment)
	if err != nil {
		return Expense{}, fmt.Errorf("add expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Expense{}, fmt.Errorf("add expense: %w", err)
	}
	return Expense{
		ID:       id,
		Category: category,
		Date:     date,
		Currency: currency,
		Amount:   amount,
		Comment:  comment,
	}, nil
}

// Update changes fields of an existing expense. At least one field of upd
// must be set; a new category id must name an existing category.
func (s *ExpenseStore) Update(ctx context.Context, id int64, upd ExpenseUpdate) (Expense, error) {
	if upd.CategoryID == nil && upd.Date == nil && upd.Currency == nil && upd.Amount == nil && upd.Comment == nil {
		return Expense{}, fmt.Errorf("%w: at least one expense field must be specified", ErrNothingToUpdate)
	}

	e, err := s.Get(ctx, id)
	if err != nil {
		return Expense{}, err
	}
	if upd.CategoryID != nil {
		var category Category
		err := s.db.QueryRowContext(ctx,
			`SELECT id, name, description FROM category WHERE id = ?`, *upd.CategoryID,
		).Scan(&category.ID, &category.Name, &category.Description)
		if errors.Is(err, sql.ErrNoRows) {
			return Expense{}, fmt.Errorf("%w: id %d", ErrCategoryNotFound, *upd.CategoryID)
		}
		if err != nil {
			return Expense{}, fmt.Errorf("update expense %d: %w", id, err)
		}
		e.Category = category
	}
	if upd.Date != nil {
		e.Date = upd.Date.UTC().Truncate(time.Second)
	}
	if upd.Currency != nil {
		e.Currency = *upd.Currency
	}
	if upd.Amount != nil {
		e.Amount = *upd.Amount
	}
	if upd.Comment != nil {
		e.Comment = *upd.Comment
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE expense SET category_id = ?, date = ?, currency = ?, amount = ?, comment = ?
		 WHERE id = ?`,
		e.Category.ID, encodeDate(e.Date), e.Currency, e.Amount, e.Comment, e.ID)
	if err != nil {
		return Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	return e, nil
}

// Find returns expenses matching the filter, newest first.
func (s *ExpenseStore) Find(ctx context.Context, f Filter) ([]Expense, error) {
	var (
		conditions []string
		args       []any
	)
	if f.CategoryID != nil {
		conditions = append(conditions, "e.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.DateFrom != nil {
		conditions = append(conditions, "e.date >= ?")
		args = append(args, encodeDate(*f.DateFrom))
	}
	if f.DateTo != nil {
		conditions = append(conditions, "e.date <= ?")
		args = append(args, encodeDate(*f.DateTo))
	}
	if len(f.Currencies) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Currencies)), ",")
		conditions = append(conditions, "e.currency IN ("+placeholders+")")
		for _, c := range f.Currencies {
			args = append(args, c)
		}
	}
	if f.AmountFrom != nil {
		conditions = append(conditions, "e.amount >= ?")
		args = append(args, *f.AmountFrom)
	}
	if f.AmountTo != nil {
		conditions = append(conditions, "e.amount <= ?")
		args = append(args, *f.AmountTo)
	}
	if f.CommentLike != "" {
		pattern := f.CommentLike
		if !strings.HasPrefix(pattern, "%") {
			pattern = "%" + pattern
		}
		if !strings.HasSuffix(pattern, "%") {
			pattern += "%"
		}
		conditions = append(conditions, "e.comment LIKE ?")
		args = append(args, pattern)
	}

	query := `SELECT ` + expenseColumns + `
	 FROM expense e JOIN category c ON c.id = e.category_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.date DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return s.query(ctx, query, args...)
}

// Latest returns the most recent expenses, newest first.
func (s *ExpenseStore) Latest(ctx context.Context, limit int) ([]Expense, error) {
	return s.query(ctx,
		`SELECT `+expenseColumns+`
		 FROM expense e JOIN category c ON c.id = e.category_id
		 ORDER BY e.date DESC LIMIT ?`, limit)
}

func (s *ExpenseStore) query(ctx context.Context, query string, args ...any) ([]Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
