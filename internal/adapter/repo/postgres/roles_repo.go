package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const uniqueViolation = "23505"

const roleColumns = `id, name, keywords, created_at, updated_at`

// RoleRepo persists role keyword sets in the roles table.
type RoleRepo struct {
	Pool PgxPool
	now  func() time.Time
}

// NewRoleRepo constructs a RoleRepo with the given pool.
func NewRoleRepo(p PgxPool) *RoleRepo {
	return &RoleRepo{Pool: p, now: func() time.Time { return time.Now().UTC() }}
}

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("repo.roles").Start(ctx, name)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", "roles"),
	)
	return ctx, span
}

func scanRole(row pgx.Row) (domain.Role, error) {
	var r domain.Role
	if err := row.Scan(&r.ID, &r.Name, &r.Keywords, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return domain.Role{}, err
	}
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	return r, nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("op=%s: %w: %s", op, domain.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("op=%s: %w", op, err)
}

// List returns all roles ordered by name.
func (r *RoleRepo) List(ctx domain.Context) ([]domain.Role, error) {
	ctx, span := startSpan(ctx, "roles.List", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, mapErr("role.list", err)
	}
	defer rows.Close()
	out := []domain.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, mapErr("role.list", err)
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("role.list", err)
	}
	return out, nil
}

// Get loads a role by id.
func (r *RoleRepo) Get(ctx domain.Context, id string) (domain.Role, error) {
	ctx, span := startSpan(ctx, "roles.Get", "SELECT")
	defer span.End()
	if _, err := uuid.Parse(id); err != nil {
		return domain.Role{}, fmt.Errorf("op=role.get: %w", domain.ErrNotFound)
	}
	role, err := scanRole(r.Pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id=$1`, id))
	if err != nil {
		return domain.Role{}, mapErr("role.get", err)
	}
	return role, nil
}

// GetByName loads a role by its exact name.
func (r *RoleRepo) GetByName(ctx domain.Context, name string) (domain.Role, error) {
	ctx, span := startSpan(ctx, "roles.GetByName", "SELECT")
	defer span.End()
	role, err := scanRole(r.Pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name=$1`, name))
	if err != nil {
		return domain.Role{}, mapErr("role.get_by_name", err)
	}
	return role, nil
}

// Create inserts a role, generating an id when empty.
func (r *RoleRepo) Create(ctx domain.Context, role domain.Role) (domain.Role, error) {
	ctx, span := startSpan(ctx, "roles.Create", "INSERT")
	defer span.End()
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	if role.Keywords == nil {
		role.Keywords = []string{}
	}
	now := r.now()
	q := `INSERT INTO roles (id, name, keywords, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`
	if _, err := r.Pool.Exec(ctx, q, role.ID, role.Name, role.Keywords, now); err != nil {
		return domain.Role{}, mapErr("role.create", err)
	}
	role.CreatedAt, role.UpdatedAt = now, now
	return role, nil
}

// UpdateKeywords replaces the keyword set of a role.
func (r *RoleRepo) UpdateKeywords(ctx domain.Context, id string, keywords []string) (domain.Role, error) {
	ctx, span := startSpan(ctx, "roles.UpdateKeywords", "UPDATE")
	defer span.End()
	if _, err := uuid.Parse(id); err != nil {
		return domain.Role{}, fmt.Errorf("op=role.update_keywords: %w", domain.ErrNotFound)
	}
	if keywords == nil {
		keywords = []string{}
	}
	q := `UPDATE roles SET keywords=$2, updated_at=$3 WHERE id=$1 RETURNING ` + roleColumns
	role, err := scanRole(r.Pool.QueryRow(ctx, q, id, keywords, r.now()))
	if err != nil {
		return domain.Role{}, mapErr("role.update_keywords", err)
	}
	return role, nil
}

// Upsert inserts a role or replaces the keywords of the role with the same name.
func (r *RoleRepo) Upsert(ctx domain.Context, name string, keywords []string) (domain.Role, error) {
	ctx, span := startSpan(ctx, "roles.Upsert", "UPSERT")
	defer span.End()
	if keywords == nil {
		keywords = []string{}
	}
	q := `INSERT INTO roles (id, name, keywords, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)
ON CONFLICT (name) DO UPDATE SET keywords=EXCLUDED.keywords, updated_at=EXCLUDED.updated_at
RETURNING ` + roleColumns
	role, err := scanRole(r.Pool.QueryRow(ctx, q, uuid.New().String(), name, keywords, r.now()))
	if err != nil {
		return domain.Role{}, mapErr("role.upsert", err)
	}
	return role, nil
}

// Delete removes a role by id.
func (r *RoleRepo) Delete(ctx domain.Context, id string) error {
	ctx, span := startSpan(ctx, "roles.Delete", "DELETE")
	defer span.End()
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("op=role.delete: %w", domain.ErrNotFound)
	}
	tag, err := r.Pool.Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
	if err != nil {
		return mapErr("role.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=role.delete: %w", domain.ErrNotFound)
	}
	return nil
}
