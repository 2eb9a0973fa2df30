package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/model"
)

// ErrRouteNotFound is returned by Load and Delete for an unknown name.
var ErrRouteNotFound = errors.New("route not found")

// RouteRepository stores patrol routes.
type RouteRepository struct {
	pool *pgxpool.Pool
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(pool *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{pool: pool}
}

// LoadAll loads every route with its waypoints, ordered by name.
func (r *RouteRepository) LoadAll(ctx context.Context) ([]*model.Route, error) {
	query := `
		SELECT r.name, r.mode, w.x, w.y, w.z
		FROM routes r
		LEFT JOIN route_waypoints w ON w.route_name = r.name
		ORDER BY r.name, w.seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all routes: %w", err)
	}
	defer rows.Close()

	var (
		routes []*model.Route
		name   string
		mode   string
		points []geo.Point3D
	)
	flush := func() error {
		if name == "" {
			return nil
		}
		route, err := buildRoute(name, mode, points)
		if err != nil {
			return err
		}
		routes = append(routes, route)
		return nil
	}

	for rows.Next() {
		var (
			rowName, rowMode string
			x, y, z          *float64
		)
		if err := rows.Scan(&rowName, &rowMode, &x, &y, &z); err != nil {
			return nil, fmt.Errorf("scanning route row: %w", err)
		}
		if rowName != name {
			if err := flush(); err != nil {
				return nil, err
			}
			name, mode, points = rowName, rowMode, nil
		}
		// LEFT JOIN yields NULL coordinates for a route without waypoints
		if x != nil && y != nil && z != nil {
			points = append(points, geo.Point3D{X: *x, Y: *y, Z: *z})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating route rows: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	slog.Debug("routes loaded from database", "count", len(routes))
	return routes, nil
}

// Load loads one route by name.
func (r *RouteRepository) Load(ctx context.Context, name string) (*model.Route, error) {
	var mode string
	err := r.pool.QueryRow(ctx, `SELECT mode FROM routes WHERE name = $1`, name).Scan(&mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loading route %q: %w", name, ErrRouteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading route %q: %w", name, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT x, y, z FROM route_waypoints WHERE route_name = $1 ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("loading waypoints of route %q: %w", name, err)
	}
	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (geo.Point3D, error) {
		var p geo.Point3D
		err := row.Scan(&p.X, &p.Y, &p.Z)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning waypoints of route %q: %w", name, err)
	}

	return buildRoute(name, mode, points)
}

// Save inserts or replaces a route and all its waypoints in one transaction.
func (r *RouteRepository) Save(ctx context.Context, route *model.Route) error {
	if route == nil || route.Name == "" {
		return fmt.Errorf("saving route: name is required")
	}
	points := route.Points()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for route %q: %w", route.Name, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "route", route.Name, "error", err)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO routes (name, mode, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET mode = EXCLUDED.mode, updated_at = now()`,
		route.Name, route.Mode.String())
	if err != nil {
		return fmt.Errorf("upserting route %q: %w", route.Name, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM route_waypoints WHERE route_name = $1`, route.Name); err != nil {
		return fmt.Errorf("clearing waypoints of route %q: %w", route.Name, err)
	}

	batch := &pgx.Batch{}
	for seq, p := range points {
		batch.Queue(
			`INSERT INTO route_waypoints (route_name, seq, x, y, z) VALUES ($1, $2, $3, $4, $5)`,
			route.Name, seq, p.X, p.Y, p.Z)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting waypoints of route %q: %w", route.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for route %q: %w", route.Name, err)
	}

	slog.Info("route saved", "route", route.Name, "mode", route.Mode, "waypoints", len(points))
	return nil
}

// Delete removes a route and its waypoints.
func (r *RouteRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM routes WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting route %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting route %q: %w", name, ErrRouteNotFound)
	}
	return nil
}

func buildRoute(name, mode string, points []geo.Point3D) (*model.Route, error) {
	m, err := model.ParsePatrolMode(mode)
	if err != nil {
		return nil, fmt.Errorf("route %q: %w", name, err)
	}
	return model.NewRoute(name, m, points), nil
}
