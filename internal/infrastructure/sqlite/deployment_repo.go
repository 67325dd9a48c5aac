package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreybell91/ignite/internal/domain"
)

// DeploymentRepo implements [domain.DeploymentRepository] backed by SQLite.
// Descriptors are stored in their wire form; Codec decides how service
// and node filter kinds are rebuilt on read.
type DeploymentRepo struct {
	DB    *sql.DB
	Codec domain.DescriptorCodec
}

func (r *DeploymentRepo) Create(ctx context.Context, d domain.ServiceDeployment) error {
	desc, nodes, err := r.encode(d)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO service_deployments (name, descriptor, eligible_nodes, state, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(d.Name()), string(desc), string(nodes), string(d.State), formatTime(d.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("deployment %q: %w", d.Name(), domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert deployment: %w", err)
	}
	return nil
}

func (r *DeploymentRepo) Get(ctx context.Context, name domain.ServiceName) (domain.ServiceDeployment, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT descriptor, eligible_nodes, state, updated_at
		 FROM service_deployments WHERE name = ?`,
		string(name),
	)
	d, err := r.scan(row)
	if errors.Is(err, domain.ErrNotFound) {
		return d, fmt.Errorf("deployment %q: %w", name, domain.ErrNotFound)
	}
	return d, err
}

func (r *DeploymentRepo) List(ctx context.Context) ([]domain.ServiceDeployment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT descriptor, eligible_nodes, state, updated_at
		 FROM service_deployments ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []domain.ServiceDeployment
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		deployments = append(deployments, d)
	}
	return deployments, rows.Err()
}

func (r *DeploymentRepo) Update(ctx context.Context, d domain.ServiceDeployment) error {
	desc, nodes, err := r.encode(d)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE service_deployments
		 SET descriptor = ?, eligible_nodes = ?, state = ?, updated_at = ?
		 WHERE name = ?`,
		string(desc), string(nodes), string(d.State), formatTime(d.UpdatedAt), string(d.Name()),
	)
	if err != nil {
		return fmt.Errorf("update deployment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("deployment %q: %w", d.Name(), domain.ErrNotFound)
	}
	return nil
}

func (r *DeploymentRepo) Delete(ctx context.Context, name domain.ServiceName) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM service_deployments WHERE name = ?`, string(name))
	if err != nil {
		return fmt.Errorf("delete deployment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("deployment %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (r *DeploymentRepo) encode(d domain.ServiceDeployment) (desc, nodes []byte, err error) {
	desc, err = r.Codec.Encode(d.Descriptor)
	if err != nil {
		return nil, nil, fmt.Errorf("encode descriptor: %w", err)
	}
	eligible := d.EligibleNodes
	if eligible == nil {
		eligible = []domain.NodeID{}
	}
	nodes, err = json.Marshal(eligible)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal eligible nodes: %w", err)
	}
	return desc, nodes, nil
}

func (r *DeploymentRepo) scan(s scanner) (domain.ServiceDeployment, error) {
	var d domain.ServiceDeployment
	var descJSON, nodesJSON, stateStr, updatedAtStr string
	if err := s.Scan(&descJSON, &nodesJSON, &stateStr, &updatedAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, domain.ErrNotFound
		}
		return d, fmt.Errorf("scan deployment: %w", err)
	}

	desc, err := r.Codec.Decode([]byte(descJSON))
	if err != nil {
		return d, fmt.Errorf("decode descriptor: %w", err)
	}
	d.Descriptor = desc
	d.State = domain.DeploymentState(stateStr)
	if err := json.Unmarshal([]byte(nodesJSON), &d.EligibleNodes); err != nil {
		return d, fmt.Errorf("unmarshal eligible nodes: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return d, fmt.Errorf("parse updated_at: %w", err)
	}
	return d, nil
}
