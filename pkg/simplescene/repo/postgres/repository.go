// Package postgres provides a PostgreSQL-backed simplescene.Repository.
//
// Expected schema (search_path must point at it):
//
//	scene           (id uuid PK, name text UNIQUE, created_at, updated_at)
//	node            (id uuid PK, scene_id uuid REFERENCES scene ON DELETE CASCADE,
//	                 name text, kind text, created_at, updated_at,
//	                 UNIQUE (scene_id, name))
//	node_attribute  (node_id uuid REFERENCES node ON DELETE CASCADE, name text,
//	                 type text, string_value text, int_value bigint,
//	                 float_value double precision, created_at, updated_at,
//	                 PRIMARY KEY (node_id, name))
//	node_connection (id uuid PK, source_id uuid REFERENCES node ON DELETE CASCADE,
//	                 target_id uuid, target_attr text, seq bigserial, created_at,
//	                 UNIQUE (source_id, target_id, target_attr),
//	                 FOREIGN KEY (target_id, target_attr)
//	                   REFERENCES node_attribute (node_id, name) ON DELETE CASCADE)
//
// Value columns are NOT NULL with zero defaults; an attribute's stored type
// selects the meaningful one.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-scene/pkg/simplescene"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplescene.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) simplescene.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simplescene.Repository {
	return &Repository{db: pool}
}

// Error handling helper. Constraint violations map onto the package sentinel
// errors so callers can errors.Is against them regardless of backend.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "node_attribute") {
				return simplescene.ErrAttributeExists
			}
			if strings.Contains(pgErr.ConstraintName, "node") {
				return simplescene.ErrNodeExists
			}
			if strings.Contains(pgErr.ConstraintName, "scene") {
				return simplescene.ErrSceneExists
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			if strings.Contains(pgErr.ConstraintName, "target_attr") {
				return simplescene.ErrAttributeNotFound
			}
			if strings.Contains(pgErr.ConstraintName, "scene") {
				return simplescene.ErrSceneNotFound
			}
			return simplescene.ErrNodeNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	// Handle other common errors
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("record not found")
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// nodeExists reports ErrNodeNotFound when the node is missing
func (r *Repository) nodeExists(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM node WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return r.handlePostgresError("check node", err)
	}
	if !exists {
		return simplescene.ErrNodeNotFound
	}
	return nil
}

// attrNotFound tells a missing node apart from a missing attribute
func (r *Repository) attrNotFound(ctx context.Context, nodeID uuid.UUID) error {
	if err := r.nodeExists(ctx, nodeID); err != nil {
		return err
	}
	return simplescene.ErrAttributeNotFound
}

// Scene operations

func (r *Repository) CreateScene(ctx context.Context, scene *simplescene.Scene) error {
	query := `
		INSERT INTO scene (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, scene.ID, scene.Name, scene.CreatedAt, scene.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create scene", err)
	}

	return nil
}

func (r *Repository) GetScene(ctx context.Context, id uuid.UUID) (*simplescene.Scene, error) {
	query := `
        SELECT id, name, created_at, updated_at
        FROM scene WHERE id = $1`

	var scene simplescene.Scene
	err := r.db.QueryRow(ctx, query, id).Scan(
		&scene.ID, &scene.Name, &scene.CreatedAt, &scene.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplescene.ErrSceneNotFound
		}
		return nil, r.handlePostgresError("get scene", err)
	}

	return &scene, nil
}

func (r *Repository) GetSceneByName(ctx context.Context, name string) (*simplescene.Scene, error) {
	query := `
        SELECT id, name, created_at, updated_at
        FROM scene WHERE name = $1`

	var scene simplescene.Scene
	err := r.db.QueryRow(ctx, query, name).Scan(
		&scene.ID, &scene.Name, &scene.CreatedAt, &scene.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplescene.ErrSceneNotFound
		}
		return nil, r.handlePostgresError("get scene by name", err)
	}

	return &scene, nil
}

func (r *Repository) ListScenes(ctx context.Context) ([]*simplescene.Scene, error) {
	query := `
        SELECT id, name, created_at, updated_at
        FROM scene ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list scenes", err)
	}
	defer rows.Close()

	var scenes []*simplescene.Scene
	for rows.Next() {
		var scene simplescene.Scene
		if err := rows.Scan(&scene.ID, &scene.Name, &scene.CreatedAt, &scene.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("scan scene", err)
		}
		scenes = append(scenes, &scene)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate scene rows", err)
	}

	return scenes, nil
}

func (r *Repository) DeleteScene(ctx context.Context, id uuid.UUID) error {
	// Nodes, attributes, and edges go with the scene via FK cascade
	tag, err := r.db.Exec(ctx, "DELETE FROM scene WHERE id = $1", id)
	if err != nil {
		return r.handlePostgresError("delete scene", err)
	}
	if tag.RowsAffected() == 0 {
		return simplescene.ErrSceneNotFound
	}
	return nil
}

// Node operations

func (r *Repository) CreateNode(ctx context.Context, node *simplescene.Node) error {
	query := `
		INSERT INTO node (id, scene_id, name, kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		node.ID, node.SceneID, node.Name, node.Kind, node.CreatedAt, node.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create node", err)
	}

	return nil
}

func (r *Repository) GetNode(ctx context.Context, id uuid.UUID) (*simplescene.Node, error) {
	query := `
        SELECT id, scene_id, name, kind, created_at, updated_at
        FROM node WHERE id = $1`

	var node simplescene.Node
	err := r.db.QueryRow(ctx, query, id).Scan(
		&node.ID, &node.SceneID, &node.Name, &node.Kind, &node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplescene.ErrNodeNotFound
		}
		return nil, r.handlePostgresError("get node", err)
	}

	return &node, nil
}

func (r *Repository) GetNodeByName(ctx context.Context, sceneID uuid.UUID, name string) (*simplescene.Node, error) {
	query := `
        SELECT id, scene_id, name, kind, created_at, updated_at
        FROM node WHERE scene_id = $1 AND name = $2`

	var node simplescene.Node
	err := r.db.QueryRow(ctx, query, sceneID, name).Scan(
		&node.ID, &node.SceneID, &node.Name, &node.Kind, &node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, serr := r.GetScene(ctx, sceneID); serr != nil {
				return nil, serr
			}
			return nil, simplescene.ErrNodeNotFound
		}
		return nil, r.handlePostgresError("get node by name", err)
	}

	return &node, nil
}

func (r *Repository) ListNodes(ctx context.Context, sceneID uuid.UUID) ([]*simplescene.Node, error) {
	if _, err := r.GetScene(ctx, sceneID); err != nil {
		return nil, err
	}

	query := `
        SELECT id, scene_id, name, kind, created_at, updated_at
        FROM node WHERE scene_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, sceneID)
	if err != nil {
		return nil, r.handlePostgresError("list nodes", err)
	}
	defer rows.Close()

	var nodes []*simplescene.Node
	for rows.Next() {
		var node simplescene.Node
		if err := rows.Scan(&node.ID, &node.SceneID, &node.Name, &node.Kind,
			&node.CreatedAt, &node.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("scan node", err)
		}
		nodes = append(nodes, &node)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate node rows", err)
	}

	return nodes, nil
}

func (r *Repository) UpdateNode(ctx context.Context, node *simplescene.Node) error {
	// Scene membership and creation time are immutable
	query := `
		UPDATE node SET name = $2, kind = $3, updated_at = $4
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, node.ID, node.Name, node.Kind, node.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update node", err)
	}
	if tag.RowsAffected() == 0 {
		return simplescene.ErrNodeNotFound
	}
	return nil
}

func (r *Repository) DeleteNode(ctx context.Context, id uuid.UUID) error {
	// Attributes and edges in either direction go with the node via FK cascade
	tag, err := r.db.Exec(ctx, "DELETE FROM node WHERE id = $1", id)
	if err != nil {
		return r.handlePostgresError("delete node", err)
	}
	if tag.RowsAffected() == 0 {
		return simplescene.ErrNodeNotFound
	}
	return nil
}

// Attribute operations

func (r *Repository) HasAttribute(ctx context.Context, nodeID uuid.UUID, name string) (bool, error) {
	if err := r.nodeExists(ctx, nodeID); err != nil {
		return false, err
	}

	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM node_attribute WHERE node_id = $1 AND name = $2)",
		nodeID, name).Scan(&exists)
	if err != nil {
		return false, r.handlePostgresError("check attribute", err)
	}
	return exists, nil
}

func (r *Repository) CreateAttribute(ctx context.Context, attr *simplescene.Attribute) error {
	query := `
		INSERT INTO node_attribute (
			node_id, name, type, string_value, int_value, float_value,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		attr.NodeID, attr.Name, string(attr.Type),
		attr.StringValue, attr.IntValue, attr.FloatValue,
		attr.CreatedAt, attr.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create attribute", err)
	}

	return nil
}

func (r *Repository) GetAttribute(ctx context.Context, nodeID uuid.UUID, name string) (*simplescene.Attribute, error) {
	query := `
        SELECT node_id, name, type, string_value, int_value, float_value,
               created_at, updated_at
        FROM node_attribute WHERE node_id = $1 AND name = $2`

	var attr simplescene.Attribute
	var typ string
	err := r.db.QueryRow(ctx, query, nodeID, name).Scan(
		&attr.NodeID, &attr.Name, &typ,
		&attr.StringValue, &attr.IntValue, &attr.FloatValue,
		&attr.CreatedAt, &attr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.attrNotFound(ctx, nodeID)
		}
		return nil, r.handlePostgresError("get attribute", err)
	}
	attr.Type = simplescene.AttrType(typ)

	return &attr, nil
}

func (r *Repository) SetAttribute(ctx context.Context, attr *simplescene.Attribute) error {
	// The stored type never changes on a value write
	query := `
		UPDATE node_attribute SET
			string_value = $3, int_value = $4, float_value = $5, updated_at = $6
		WHERE node_id = $1 AND name = $2`

	tag, err := r.db.Exec(ctx, query,
		attr.NodeID, attr.Name,
		attr.StringValue, attr.IntValue, attr.FloatValue, attr.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("set attribute", err)
	}
	if tag.RowsAffected() == 0 {
		return r.attrNotFound(ctx, attr.NodeID)
	}
	return nil
}

func (r *Repository) ListAttributes(ctx context.Context, nodeID uuid.UUID) ([]*simplescene.Attribute, error) {
	if err := r.nodeExists(ctx, nodeID); err != nil {
		return nil, err
	}

	query := `
        SELECT node_id, name, type, string_value, int_value, float_value,
               created_at, updated_at
        FROM node_attribute WHERE node_id = $1 ORDER BY created_at, name`

	rows, err := r.db.Query(ctx, query, nodeID)
	if err != nil {
		return nil, r.handlePostgresError("list attributes", err)
	}
	defer rows.Close()

	var attrs []*simplescene.Attribute
	for rows.Next() {
		var attr simplescene.Attribute
		var typ string
		if err := rows.Scan(&attr.NodeID, &attr.Name, &typ,
			&attr.StringValue, &attr.IntValue, &attr.FloatValue,
			&attr.CreatedAt, &attr.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("scan attribute", err)
		}
		attr.Type = simplescene.AttrType(typ)
		attrs = append(attrs, &attr)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate attribute rows", err)
	}

	return attrs, nil
}

func (r *Repository) DeleteAttribute(ctx context.Context, nodeID uuid.UUID, name string) error {
	// Inbound edges of the slot go with it via FK cascade
	tag, err := r.db.Exec(ctx,
		"DELETE FROM node_attribute WHERE node_id = $1 AND name = $2", nodeID, name)
	if err != nil {
		return r.handlePostgresError("delete attribute", err)
	}
	if tag.RowsAffected() == 0 {
		return r.attrNotFound(ctx, nodeID)
	}
	return nil
}

// Connection operations

func (r *Repository) Connect(ctx context.Context, sourceID, targetID uuid.UUID, targetAttr string) (*simplescene.Connection, error) {
	if err := r.nodeExists(ctx, sourceID); err != nil {
		return nil, err
	}

	conn := &simplescene.Connection{
		ID:         uuid.New(),
		SourceID:   sourceID,
		TargetID:   targetID,
		TargetAttr: targetAttr,
		CreatedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO node_connection (id, source_id, target_id, target_attr, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id, target_id, target_attr) DO NOTHING
		RETURNING seq`

	err := r.db.QueryRow(ctx, query,
		conn.ID, conn.SourceID, conn.TargetID, conn.TargetAttr, conn.CreatedAt).Scan(&conn.Seq)
	if err != nil {
		// Identical edges collapse onto the existing one
		if errors.Is(err, pgx.ErrNoRows) {
			return r.getConnection(ctx, sourceID, targetID, targetAttr)
		}
		return nil, r.handlePostgresError("connect", err)
	}

	return conn, nil
}

func (r *Repository) getConnection(ctx context.Context, sourceID, targetID uuid.UUID, targetAttr string) (*simplescene.Connection, error) {
	query := `
        SELECT id, source_id, target_id, target_attr, seq, created_at
        FROM node_connection
        WHERE source_id = $1 AND target_id = $2 AND target_attr = $3`

	var conn simplescene.Connection
	err := r.db.QueryRow(ctx, query, sourceID, targetID, targetAttr).Scan(
		&conn.ID, &conn.SourceID, &conn.TargetID, &conn.TargetAttr,
		&conn.Seq, &conn.CreatedAt)
	if err != nil {
		return nil, r.handlePostgresError("get connection", err)
	}

	return &conn, nil
}

func (r *Repository) Disconnect(ctx context.Context, targetID uuid.UUID, targetAttr string) (int, error) {
	if err := r.nodeExists(ctx, targetID); err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx,
		"DELETE FROM node_connection WHERE target_id = $1 AND target_attr = $2",
		targetID, targetAttr)
	if err != nil {
		return 0, r.handlePostgresError("disconnect", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *Repository) ListConnections(ctx context.Context, targetID uuid.UUID, targetAttr string) ([]*simplescene.Connection, error) {
	if err := r.nodeExists(ctx, targetID); err != nil {
		return nil, err
	}

	query := `
        SELECT id, source_id, target_id, target_attr, seq, created_at
        FROM node_connection
        WHERE target_id = $1 AND target_attr = $2 ORDER BY seq`

	rows, err := r.db.Query(ctx, query, targetID, targetAttr)
	if err != nil {
		return nil, r.handlePostgresError("list connections", err)
	}
	defer rows.Close()

	return scanConnections(rows)
}

func (r *Repository) ListNodeConnections(ctx context.Context, nodeID uuid.UUID) ([]*simplescene.Connection, error) {
	if err := r.nodeExists(ctx, nodeID); err != nil {
		return nil, err
	}

	query := `
        SELECT id, source_id, target_id, target_attr, seq, created_at
        FROM node_connection
        WHERE source_id = $1 OR target_id = $1 ORDER BY seq`

	rows, err := r.db.Query(ctx, query, nodeID)
	if err != nil {
		return nil, r.handlePostgresError("list node connections", err)
	}
	defer rows.Close()

	return scanConnections(rows)
}

func scanConnections(rows pgx.Rows) ([]*simplescene.Connection, error) {
	var conns []*simplescene.Connection
	for rows.Next() {
		var conn simplescene.Connection
		if err := rows.Scan(&conn.ID, &conn.SourceID, &conn.TargetID,
			&conn.TargetAttr, &conn.Seq, &conn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, &conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connection rows: %w", err)
	}
	return conns, nil
}

// Admin operations

func (r *Repository) ListNodesWithFilters(ctx context.Context, filters simplescene.NodeListFilters) ([]*simplescene.Node, error) {
	query := `
        SELECT id, scene_id, name, kind, created_at, updated_at
        FROM node WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	// Build dynamic WHERE clause
	if filters.SceneID != nil {
		query += fmt.Sprintf(" AND scene_id = $%d", argIndex)
		args = append(args, *filters.SceneID)
		argIndex++
	}
	if len(filters.SceneIDs) > 0 {
		query += fmt.Sprintf(" AND scene_id = ANY($%d)", argIndex)
		args = append(args, filters.SceneIDs)
		argIndex++
	}

	if filters.Kind != nil {
		query += fmt.Sprintf(" AND LOWER(kind) = LOWER($%d)", argIndex)
		args = append(args, *filters.Kind)
		argIndex++
	}
	if len(filters.Kinds) > 0 {
		query += fmt.Sprintf(" AND LOWER(kind) = ANY($%d)", argIndex)
		args = append(args, lowered(filters.Kinds))
		argIndex++
	}

	if filters.NamePrefix != nil {
		query += fmt.Sprintf(" AND name LIKE $%d || '%%'", argIndex)
		args = append(args, *filters.NamePrefix)
		argIndex++
	}

	if filters.CreatedAfter != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filters.CreatedAfter)
		argIndex++
	}
	if filters.CreatedBefore != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filters.CreatedBefore)
		argIndex++
	}
	if filters.UpdatedAfter != nil {
		query += fmt.Sprintf(" AND updated_at >= $%d", argIndex)
		args = append(args, *filters.UpdatedAfter)
		argIndex++
	}
	if filters.UpdatedBefore != nil {
		query += fmt.Sprintf(" AND updated_at <= $%d", argIndex)
		args = append(args, *filters.UpdatedBefore)
		argIndex++
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	if filters.SortBy != nil {
		switch *filters.SortBy {
		case "created_at", "updated_at", "name", "kind":
			sortBy = *filters.SortBy
		}
	}
	if filters.SortOrder != nil {
		if strings.ToUpper(*filters.SortOrder) == "ASC" {
			sortOrder = "ASC"
		}
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	// Pagination
	if filters.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *filters.Limit)
		argIndex++
	}
	if filters.Offset != nil {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, *filters.Offset)
		argIndex++
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list nodes with filters", err)
	}
	defer rows.Close()

	var nodes []*simplescene.Node
	for rows.Next() {
		var node simplescene.Node
		if err := rows.Scan(&node.ID, &node.SceneID, &node.Name, &node.Kind,
			&node.CreatedAt, &node.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("scan node", err)
		}
		nodes = append(nodes, &node)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate node rows", err)
	}

	return nodes, nil
}

func (r *Repository) CountNodesWithFilters(ctx context.Context, filters simplescene.NodeCountFilters) (int64, error) {
	where, args := r.buildStatisticsWhereClause(filters, "")
	query := "SELECT COUNT(*) FROM node WHERE " + where

	var count int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("count nodes with filters", err)
	}

	return count, nil
}

func (r *Repository) GetNodeStatistics(ctx context.Context, filters simplescene.NodeCountFilters, options simplescene.NodeStatisticsOptions) (*simplescene.NodeStatisticsResult, error) {
	result := &simplescene.NodeStatisticsResult{}

	// Get total count
	totalCount, err := r.CountNodesWithFilters(ctx, filters)
	if err != nil {
		return nil, err
	}
	result.TotalCount = totalCount

	// Get kind breakdown
	if options.IncludeKindBreakdown {
		result.ByKind = make(map[string]int64)
		where, args := r.buildStatisticsWhereClause(filters, "")
		query := "SELECT COALESCE(kind, ''), COUNT(*) FROM node WHERE " + where + " GROUP BY kind"
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return nil, r.handlePostgresError("get kind breakdown", err)
		}
		defer rows.Close()

		for rows.Next() {
			var kind string
			var count int64
			if err := rows.Scan(&kind, &count); err != nil {
				return nil, r.handlePostgresError("scan kind breakdown", err)
			}
			result.ByKind[kind] = count
		}
	}

	// Get scene breakdown, keyed by scene name
	if options.IncludeSceneBreakdown {
		result.ByScene = make(map[string]int64)
		where, args := r.buildStatisticsWhereClause(filters, "n.")
		query := `SELECT s.name, COUNT(*) FROM node n
			JOIN scene s ON s.id = n.scene_id
			WHERE ` + where + " GROUP BY s.name"
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return nil, r.handlePostgresError("get scene breakdown", err)
		}
		defer rows.Close()

		for rows.Next() {
			var sceneName string
			var count int64
			if err := rows.Scan(&sceneName, &count); err != nil {
				return nil, r.handlePostgresError("scan scene breakdown", err)
			}
			result.ByScene[sceneName] = count
		}
	}

	// Get attribute type breakdown
	if options.IncludeAttrTypeBreakdown {
		result.ByAttrType = make(map[string]int64)
		where, args := r.buildStatisticsWhereClause(filters, "n.")
		query := `SELECT a.type, COUNT(*) FROM node_attribute a
			JOIN node n ON n.id = a.node_id
			WHERE ` + where + " GROUP BY a.type"
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return nil, r.handlePostgresError("get attribute type breakdown", err)
		}
		defer rows.Close()

		for rows.Next() {
			var typ string
			var count int64
			if err := rows.Scan(&typ, &count); err != nil {
				return nil, r.handlePostgresError("scan attribute type breakdown", err)
			}
			result.ByAttrType[typ] = count
		}
	}

	// Get connection count (edges into the filtered nodes)
	if options.IncludeConnectionCount {
		where, args := r.buildStatisticsWhereClause(filters, "n.")
		query := `SELECT COUNT(*) FROM node_connection c
			JOIN node n ON n.id = c.target_id
			WHERE ` + where
		if err := r.db.QueryRow(ctx, query, args...).Scan(&result.ConnectionCount); err != nil {
			return nil, r.handlePostgresError("get connection count", err)
		}
	}

	// Get time range
	if options.IncludeTimeRange {
		where, args := r.buildStatisticsWhereClause(filters, "")
		query := "SELECT MIN(created_at), MAX(created_at) FROM node WHERE " + where
		var oldest, newest *time.Time
		err := r.db.QueryRow(ctx, query, args...).Scan(&oldest, &newest)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, r.handlePostgresError("get time range", err)
		}
		result.OldestNode = oldest
		result.NewestNode = newest
	}

	return result, nil
}

// buildStatisticsWhereClause builds the WHERE clause for count and statistics
// queries. The alias prefixes node columns for queries that join other tables.
func (r *Repository) buildStatisticsWhereClause(filters simplescene.NodeCountFilters, alias string) (string, []interface{}) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filters.SceneID != nil {
		where += fmt.Sprintf(" AND %sscene_id = $%d", alias, argIndex)
		args = append(args, *filters.SceneID)
		argIndex++
	}
	if len(filters.SceneIDs) > 0 {
		where += fmt.Sprintf(" AND %sscene_id = ANY($%d)", alias, argIndex)
		args = append(args, filters.SceneIDs)
		argIndex++
	}

	if filters.Kind != nil {
		where += fmt.Sprintf(" AND LOWER(%skind) = LOWER($%d)", alias, argIndex)
		args = append(args, *filters.Kind)
		argIndex++
	}
	if len(filters.Kinds) > 0 {
		where += fmt.Sprintf(" AND LOWER(%skind) = ANY($%d)", alias, argIndex)
		args = append(args, lowered(filters.Kinds))
		argIndex++
	}

	if filters.NamePrefix != nil {
		where += fmt.Sprintf(" AND %sname LIKE $%d || '%%'", alias, argIndex)
		args = append(args, *filters.NamePrefix)
		argIndex++
	}

	if filters.CreatedAfter != nil {
		where += fmt.Sprintf(" AND %screated_at >= $%d", alias, argIndex)
		args = append(args, *filters.CreatedAfter)
		argIndex++
	}
	if filters.CreatedBefore != nil {
		where += fmt.Sprintf(" AND %screated_at <= $%d", alias, argIndex)
		args = append(args, *filters.CreatedBefore)
		argIndex++
	}
	if filters.UpdatedAfter != nil {
		where += fmt.Sprintf(" AND %supdated_at >= $%d", alias, argIndex)
		args = append(args, *filters.UpdatedAfter)
		argIndex++
	}
	if filters.UpdatedBefore != nil {
		where += fmt.Sprintf(" AND %supdated_at <= $%d", alias, argIndex)
		args = append(args, *filters.UpdatedBefore)
		argIndex++
	}

	return where, args
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
