package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreybell91/ignite/internal/domain"
)

// NodeRepo implements [domain.NodeRepository] backed by SQLite.
type NodeRepo struct {
	DB *sql.DB
}

func (r *NodeRepo) Create(ctx context.Context, n domain.ClusterNode) error {
	labels, err := json.Marshal(n.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO nodes (id, name, labels, attributes) VALUES (?, ?, ?, ?)`,
		string(n.ID), n.Name, string(labels), string(attrs),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("node %q: %w", n.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

func (r *NodeRepo) Get(ctx context.Context, id domain.NodeID) (domain.ClusterNode, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, name, labels, attributes FROM nodes WHERE id = ?`,
		string(id),
	)
	n, err := scanNode(row)
	if errors.Is(err, domain.ErrNotFound) {
		return n, fmt.Errorf("node %q: %w", id, domain.ErrNotFound)
	}
	return n, err
}

func (r *NodeRepo) List(ctx context.Context) ([]domain.ClusterNode, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, labels, attributes FROM nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.ClusterNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *NodeRepo) Delete(ctx context.Context, id domain.NodeID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("node %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanNode(s scanner) (domain.ClusterNode, error) {
	var n domain.ClusterNode
	var id, labelsJSON, attrsJSON string
	if err := s.Scan(&id, &n.Name, &labelsJSON, &attrsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return n, domain.ErrNotFound
		}
		return n, fmt.Errorf("scan node: %w", err)
	}
	n.ID = domain.NodeID(id)
	if err := json.Unmarshal([]byte(labelsJSON), &n.Labels); err != nil {
		return n, fmt.Errorf("unmarshal labels: %w", err)
	}
	if err := json.Unmarshal([]byte(attrsJSON), &n.Attributes); err != nil {
		return n, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return n, nil
}
