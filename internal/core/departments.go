package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DepartmentService manages the relief departments that own inventory.
// Deletes are gated: a department holding active items cannot go away,
// since items and ledger rows reference it.
type DepartmentService interface {
	Create(ctx context.Context, input DepartmentInput) (*Department, error)
	Get(ctx context.Context, ref string) (*Department, error)
	List(ctx context.Context) ([]Department, error)
	Exists(ctx context.Context, id int) (bool, error)
	Delete(ctx context.Context, id int) error
}

type Department struct {
	ID            int       `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	IsDeleted     bool      `json:"is_deleted,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type DepartmentInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
}

func (in *DepartmentInput) Normalize() {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
}

func (in *DepartmentInput) Validate() error {
	if !itemCodePattern.MatchString(in.Code) {
		return &ValidationError{Field: "code", Message: "must be 3-20 alphanumeric characters"}
	}
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	return nil
}

type departmentService struct {
	pool *pgxpool.Pool
}

// NewDepartmentService constructs a DepartmentService backed by PostgreSQL.
func NewDepartmentService(pool *pgxpool.Pool) DepartmentService {
	return &departmentService{pool: pool}
}

const departmentColumns = "id, code, name, description, contact_person, phone, is_deleted, created_at"

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Description, &d.ContactPerson, &d.Phone, &d.IsDeleted, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *departmentService) Create(ctx context.Context, input DepartmentInput) (*Department, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	d, err := scanDepartment(s.pool.QueryRow(ctx, `
		INSERT INTO departments (code, name, description, contact_person, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+departmentColumns,
		input.Code, input.Name, input.Description, input.ContactPerson, input.Phone,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, &DuplicateDepartmentCodeError{Code: input.Code}
		}
		return nil, fmt.Errorf("create department %q: %w", input.Code, err)
	}
	return d, nil
}

// Get returns a department by numeric id or code.
func (s *departmentService) Get(ctx context.Context, ref string) (*Department, error) {
	predicate := "upper(code) = upper($1)"
	var arg any = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil {
		predicate, arg = "id = $1", id
	}

	d, err := scanDepartment(s.pool.QueryRow(ctx,
		"SELECT "+departmentColumns+" FROM departments WHERE "+predicate+" AND NOT is_deleted", arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "department", Ref: ref}
		}
		return nil, fmt.Errorf("get department %q: %w", ref, err)
	}
	return d, nil
}

func (s *departmentService) List(ctx context.Context) ([]Department, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+departmentColumns+" FROM departments WHERE NOT is_deleted ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	departments := []Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return departments, nil
}

func (s *departmentService) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1 AND NOT is_deleted)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check department %d: %w", id, err)
	}
	return exists, nil
}

// Delete soft-deletes a department. The row lock holds the dependents
// check and the flag write together, so a concurrent item create cannot
// slip in between.
func (s *departmentService) Delete(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var deptID int
	err = tx.QueryRow(ctx,
		"SELECT id FROM departments WHERE id = $1 AND NOT is_deleted FOR UPDATE", id).Scan(&deptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Entity: "department", Ref: strconv.Itoa(id)}
		}
		return fmt.Errorf("failed to lock department %d: %w", id, err)
	}

	var dependents int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM inventory_items WHERE department_id = $1 AND NOT is_deleted", id).Scan(&dependents)
	if err != nil {
		return fmt.Errorf("failed to count department %d items: %w", id, err)
	}
	if dependents > 0 {
		return &DependencyConflictError{Entity: "department", Ref: strconv.Itoa(id), Dependents: dependents}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE departments SET is_deleted = true WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete department %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit department delete: %w", err)
	}
	return nil
}
