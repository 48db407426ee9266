package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"timebudget/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// User is an identity row. Credentials live with the upstream auth layer,
// not here; the row exists so every budget, expense and activity has an
// owner to be scoped by.
type User struct {
	ID       int64
	Username string
	Email    string
}

// SQLiteRepository persists users, budgets, expenses and activities.
// Every read and write is keyed by user id; nothing aggregates across users.
type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs migrations. Dates and schedule descriptors read back from the store
// are interpreted in loc.
func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}

	return &SQLiteRepository{db: db, loc: loc}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts an identity row and returns its id.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email) VALUES (?, ?)`, username, email)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}
	return id, nil
}

// GetUser returns the identity row for id, or ErrNotFound.
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUserIDs returns the ids of all registered users.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertBudget sets the budget amount for (userID, month), inserting the
// row on first use and updating it afterwards. Last write wins.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID int64, month string, amount core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, month, amount_cents) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, month) DO UPDATE SET amount_cents = excluded.amount_cents`,
		userID, month, amount.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"user_id", userID,
		"month", month,
		"amount_cents", amount.Cents)
	return nil
}

// GetBudget returns the budget amount for (userID, month). A month with no
// budget row reads as zero, which is not an error.
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID int64, month string) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT amount_cents FROM budgets WHERE user_id = ? AND month = ?`,
		userID, month).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get budget: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CreateExpense inserts an expense row and returns its id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, description, date) VALUES (?, ?, ?, ?)`,
		e.UserID, e.Amount.Cents, e.Description, core.DayKey(e.Date))
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"date", core.DayKey(e.Date))
	return id, nil
}

// ListMonthExpenses returns a user's expenses within the month, newest
// first. Month is a YYYY-MM key.
func (r *SQLiteRepository) ListMonthExpenses(ctx context.Context, userID int64, month string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, description, date
		 FROM expenses
		 WHERE user_id = ? AND date LIKE ? || '-%'
		 ORDER BY date DESC, id DESC`,
		userID, month)
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}
	defer rows.Close()
	return r.scanExpenses(rows)
}

// ListRecentExpenses returns a user's most recent expenses, newest first.
func (r *SQLiteRepository) ListRecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, description, date
		 FROM expenses
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", err)
	}
	defer rows.Close()
	return r.scanExpenses(rows)
}

func (r *SQLiteRepository) scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		var (
			e     core.Expense
			day   string
			cents int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &cents, &e.Description, &day); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		date, err := time.ParseInLocation("2006-01-02", day, r.loc)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", day, err)
		}
		e.Amount = core.Money{Cents: cents}
		e.Date = date
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateActivity inserts an activity row and returns its id.
func (r *SQLiteRepository) CreateActivity(ctx context.Context, a core.Activity) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (user_id, title, kind, descriptor, duration_minutes)
		 VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.Title, a.Kind, a.Descriptor, a.DurationMinutes)
	if err != nil {
		return 0, fmt.Errorf("create activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("activity insert id: %w", err)
	}

	slog.InfoContext(ctx, "Activity saved",
		"id", id,
		"user_id", a.UserID,
		"kind", a.Kind,
		"descriptor", a.Descriptor)
	return id, nil
}

// ListActivities returns all of a user's activities ordered by descriptor,
// with schedules parsed. A row with a malformed descriptor keeps a zero
// schedule and resolves to no occurrence rather than failing the list.
func (r *SQLiteRepository) ListActivities(ctx context.Context, userID int64) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, kind, descriptor, duration_minutes
		 FROM activities
		 WHERE user_id = ?
		 ORDER BY descriptor ASC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []core.Activity
	for rows.Next() {
		var a core.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Kind, &a.Descriptor, &a.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		sched, err := core.ParseSchedule(a.Kind, a.Descriptor, r.loc)
		if err != nil {
			slog.WarnContext(ctx, "Activity has malformed descriptor, it will never occur",
				"id", a.ID,
				"kind", a.Kind,
				"descriptor", a.Descriptor)
		}
		a.Schedule = sched
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// DeleteActivity removes the activity only if it belongs to userID and
// reports whether a row was actually deleted. A delete scoped to someone
// else's activity removes nothing.
func (r *SQLiteRepository) DeleteActivity(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM activities WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete activity rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Activity deleted", "id", id, "user_id", userID)
	return true, nil
}
