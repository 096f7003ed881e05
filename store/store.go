// Package store is the relational record store for mealplans, days and
// meals, backed by sqlite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/crwntec/mensaLog/plan"
)

const schema = `
CREATE TABLE IF NOT EXISTS mealplan (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    year INTEGER NOT NULL,
    week INTEGER NOT NULL,
    UNIQUE(year, week)
);

CREATE TABLE IF NOT EXISTS meal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS day (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mealplan_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    weekday TEXT NOT NULL,
    tagesgericht_id INTEGER,
    vegetarisch_id INTEGER,
    pizza_pasta_id INTEGER,
    wok_id INTEGER,
    FOREIGN KEY (mealplan_id) REFERENCES mealplan(id),
    FOREIGN KEY (tagesgericht_id) REFERENCES meal(id),
    FOREIGN KEY (vegetarisch_id) REFERENCES meal(id),
    FOREIGN KEY (pizza_pasta_id) REFERENCES meal(id),
    FOREIGN KEY (wok_id) REFERENCES meal(id)
);
`

// categoryColumns maps canonical categories to their day columns, in the
// canonical category order.
var categoryColumns = []struct {
	Category string
	Column   string
}{
	{plan.CategoryTagesgericht, "tagesgericht_id"},
	{plan.CategoryVegetarisch, "vegetarisch_id"},
	{plan.CategoryPizzaPasta, "pizza_pasta_id"},
	{plan.CategoryWok, "wok_id"},
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the sqlite database.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. logger may be nil.
func Open(path string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one connection
	// pool without serialization; a single connection keeps writes ordered.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// HasMealplan reports whether a plan for (year, week) is already stored.
func (s *Store) HasMealplan(year, week int) (bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM mealplan WHERE year = ? AND week = ?`, year, week).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query mealplan %d/%d: %w", week, year, err)
	}
	return true, nil
}

// CreateMealplan inserts a resolved weekly schedule in one transaction.
func (s *Store) CreateMealplan(p plan.ResolvedPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO mealplan (year, week) VALUES (?, ?)`, p.Year, p.Week)
	if err != nil {
		return fmt.Errorf("insert mealplan %d/%d: %w", p.Week, p.Year, err)
	}
	planID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("mealplan id: %w", err)
	}

	dates := make([]string, 0, len(p.Days))
	for date := range p.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day := p.Days[date]
		args := []any{planID, date, day.Weekday}
		for _, cc := range categoryColumns {
			if id, ok := day.Meals[cc.Category]; ok {
				args = append(args, id)
			} else {
				args = append(args, nil)
			}
		}
		_, err := tx.Exec(`INSERT INTO day
			(mealplan_id, date, weekday, tagesgericht_id, vegetarisch_id, pizza_pasta_id, wok_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return fmt.Errorf("insert day %s: %w", date, err)
		}
	}
	return tx.Commit()
}

// FetchMealplan reads a stored week back, or ErrNotFound.
func (s *Store) FetchMealplan(year, week int) (*plan.StoredPlan, error) {
	var planID int64
	err := s.db.QueryRow(`SELECT id FROM mealplan WHERE year = ? AND week = ?`, year, week).Scan(&planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query mealplan %d/%d: %w", week, year, err)
	}

	rows, err := s.db.Query(`SELECT date, weekday,
			tagesgericht_id, m1.name, vegetarisch_id, m2.name,
			pizza_pasta_id, m3.name, wok_id, m4.name
		FROM day
		LEFT JOIN meal m1 ON day.tagesgericht_id = m1.id
		LEFT JOIN meal m2 ON day.vegetarisch_id = m2.id
		LEFT JOIN meal m3 ON day.pizza_pasta_id = m3.id
		LEFT JOIN meal m4 ON day.wok_id = m4.id
		WHERE day.mealplan_id = ?
		ORDER BY day.date`, planID)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	out := &plan.StoredPlan{Year: year, Week: week, Days: map[string]plan.StoredDay{}}
	for rows.Next() {
		var date string
		day, err := scanDay(rows, &date)
		if err != nil {
			return nil, err
		}
		out.Days[date] = day
	}
	return out, rows.Err()
}

// FetchDay reads one date's schedule, or ErrNotFound.
func (s *Store) FetchDay(date string) (*plan.StoredDay, error) {
	rows, err := s.db.Query(`SELECT date, weekday,
			tagesgericht_id, m1.name, vegetarisch_id, m2.name,
			pizza_pasta_id, m3.name, wok_id, m4.name
		FROM day
		LEFT JOIN meal m1 ON day.tagesgericht_id = m1.id
		LEFT JOIN meal m2 ON day.vegetarisch_id = m2.id
		LEFT JOIN meal m3 ON day.pizza_pasta_id = m3.id
		LEFT JOIN meal m4 ON day.wok_id = m4.id
		WHERE day.date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("query day %s: %w", date, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var d string
	day, err := scanDay(rows, &d)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func scanDay(rows *sql.Rows, date *string) (plan.StoredDay, error) {
	var weekday string
	ids := make([]sql.NullInt64, len(categoryColumns))
	names := make([]sql.NullString, len(categoryColumns))
	dest := []any{date, &weekday}
	for i := range categoryColumns {
		dest = append(dest, &ids[i], &names[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return plan.StoredDay{}, fmt.Errorf("scan day: %w", err)
	}
	day := plan.StoredDay{Weekday: weekday, Meals: map[string]*plan.Meal{}}
	for i, cc := range categoryColumns {
		if ids[i].Valid && names[i].Valid {
			day.Meals[cc.Category] = &plan.Meal{ID: ids[i].Int64, Name: names[i].String}
		} else {
			day.Meals[cc.Category] = nil
		}
	}
	return day, nil
}

// FetchMeal reads one meal by id, or ErrNotFound.
func (s *Store) FetchMeal(id int64) (*plan.Meal, error) {
	name, err := s.MealName(id)
	if err != nil {
		return nil, err
	}
	return &plan.Meal{ID: id, Name: name}, nil
}

// MealName returns the name for a meal id, or ErrNotFound.
func (s *Store) MealName(id int64) (string, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM meal WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query meal %d: %w", id, err)
	}
	return name, nil
}

// InsertMeal inserts a meal name if not already present by exact equality
// and returns its id either way.
func (s *Store) InsertMeal(name string) (int64, error) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO meal (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("insert meal %q: %w", name, err)
	}
	var id int64
	if err := s.db.QueryRow(`SELECT id FROM meal WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup meal %q: %w", name, err)
	}
	return id, nil
}

// MealIDs returns all meal ids in ascending order.
func (s *Store) MealIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM meal ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReassignAndDelete rewrites every day reference from duplicate to canonical
// and deletes the duplicate meal, in one transaction so no read can observe
// a dangling reference.
func (s *Store) ReassignAndDelete(duplicate, canonical int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, cc := range categoryColumns {
		q := fmt.Sprintf(`UPDATE day SET %s = ? WHERE %s = ?`, cc.Column, cc.Column)
		if _, err := tx.Exec(q, canonical, duplicate); err != nil {
			return fmt.Errorf("reassign %s: %w", cc.Column, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM meal WHERE id = ?`, duplicate); err != nil {
		return fmt.Errorf("delete meal %d: %w", duplicate, err)
	}
	return tx.Commit()
}

// Stats summarizes the store for health checks.
type Stats struct {
	Healthy        bool     `json:"healthy"`
	TotalMeals     int      `json:"total_meals"`
	TotalDays      int      `json:"total_days"`
	TotalMealplans int      `json:"total_mealplans"`
	LastUpdate     *string  `json:"last_update"`
	LastMealplan   *string  `json:"last_mealplan"`
	OldestMealplan *string  `json:"oldest_mealplan"`
	SizeMB         *float64 `json:"database_size_mb"`
}

// Stats gathers record counts and freshness markers.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM meal`, &st.TotalMeals},
		{`SELECT COUNT(*) FROM day`, &st.TotalDays},
		{`SELECT COUNT(*) FROM mealplan`, &st.TotalMealplans},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return st, fmt.Errorf("stats: %w", err)
		}
	}

	var year, week int
	err := s.db.QueryRow(`SELECT year, week FROM mealplan ORDER BY year*100+week DESC LIMIT 1`).Scan(&year, &week)
	if err == nil {
		v := fmt.Sprintf("%d-W%02d", year, week)
		st.LastMealplan = &v
	} else if !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("stats: %w", err)
	}
	err = s.db.QueryRow(`SELECT year, week FROM mealplan ORDER BY year*100+week ASC LIMIT 1`).Scan(&year, &week)
	if err == nil {
		v := fmt.Sprintf("%d-W%02d", year, week)
		st.OldestMealplan = &v
	} else if !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("stats: %w", err)
	}

	var last sql.NullString
	if err := s.db.QueryRow(`SELECT MAX(date) FROM day`).Scan(&last); err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	if last.Valid {
		st.LastUpdate = &last.String
	}

	if info, err := os.Stat(s.path); err == nil {
		mb := float64(info.Size()) / (1024 * 1024)
		st.SizeMB = &mb
	}

	st.Healthy = st.TotalMeals > 0 && st.TotalDays > 0 && st.TotalMealplans > 0 && st.LastUpdate != nil
	return st, nil
}
