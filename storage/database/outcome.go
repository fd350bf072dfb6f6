package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/outcome"
)

type outcomeRepository struct {
	db *sqlx.DB
}

var _ outcome.Repository = (*outcomeRepository)(nil) // interface compliance check

func NewOutcomeRepository(db *sqlx.DB) *outcomeRepository {
	return &outcomeRepository{db: db}
}

func (repo outcomeRepository) CreateCO(ctx context.Context, co outcome.CO) (outcome.CO, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO co (id, subject_id, code, description, bloom_level, target_level, created_at, updated_at)
		VALUES (:id, :subject_id, :code, :description, :bloom_level, :target_level, :created_at, :updated_at)`,
		co,
	)
	if err != nil {
		if isUniqueViolation(err, "co_subject_id_code_key") {
			return outcome.CO{}, outcome.ErrCOCodeExists
		}
		return outcome.CO{}, errors.Wrap(err, "inserting course outcome")
	}
	return co, nil
}

func (repo outcomeRepository) QueryAllCOs(ctx context.Context, subjectID string) ([]outcome.CO, error) {
	cos := make([]outcome.CO, 0)
	query := `SELECT * FROM co ORDER BY code`
	args := make([]interface{}, 0, 1)
	if subjectID != "" {
		query = `SELECT * FROM co WHERE subject_id = $1 ORDER BY code`
		args = append(args, subjectID)
	}
	if err := repo.db.SelectContext(ctx, &cos, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying course outcomes")
	}
	return cos, nil
}

func (repo outcomeRepository) GetCOByID(ctx context.Context, id string) (outcome.CO, error) {
	var co outcome.CO
	if err := repo.db.GetContext(ctx, &co, `SELECT * FROM co WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return outcome.CO{}, outcome.ErrCONotFound
		}
		return outcome.CO{}, errors.Wrap(err, "getting course outcome")
	}
	return co, nil
}

func (repo outcomeRepository) UpdateCO(ctx context.Context, co outcome.CO) (outcome.CO, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE co
		SET code = :code, description = :description, bloom_level = :bloom_level,
		    target_level = :target_level, updated_at = :updated_at
		WHERE id = :id`,
		co,
	)
	if err != nil {
		if isUniqueViolation(err, "co_subject_id_code_key") {
			return outcome.CO{}, outcome.ErrCOCodeExists
		}
		return outcome.CO{}, errors.Wrap(err, "updating course outcome")
	}
	return co, nil
}

func (repo outcomeRepository) DeleteCO(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM co WHERE id = $1`, id)
	return errors.Wrap(err, "deleting course outcome")
}

func (repo outcomeRepository) CountMappingsByCO(ctx context.Context, coID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM co_po_mapping WHERE co_id = $1`, coID)
	if err != nil {
		return 0, errors.Wrap(err, "counting mappings")
	}
	return count, nil
}

func (repo outcomeRepository) CreatePO(ctx context.Context, po outcome.PO) (outcome.PO, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO po (id, program_id, code, description, created_at, updated_at)
		VALUES (:id, :program_id, :code, :description, :created_at, :updated_at)`,
		po,
	)
	if err != nil {
		if isUniqueViolation(err, "po_program_id_code_key") {
			return outcome.PO{}, outcome.ErrPOCodeExists
		}
		return outcome.PO{}, errors.Wrap(err, "inserting program outcome")
	}
	return po, nil
}

func (repo outcomeRepository) QueryAllPOs(ctx context.Context, programID string) ([]outcome.PO, error) {
	pos := make([]outcome.PO, 0)
	query := `SELECT * FROM po ORDER BY code`
	args := make([]interface{}, 0, 1)
	if programID != "" {
		query = `SELECT * FROM po WHERE program_id = $1 ORDER BY code`
		args = append(args, programID)
	}
	if err := repo.db.SelectContext(ctx, &pos, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying program outcomes")
	}
	return pos, nil
}

func (repo outcomeRepository) GetPOByID(ctx context.Context, id string) (outcome.PO, error) {
	var po outcome.PO
	if err := repo.db.GetContext(ctx, &po, `SELECT * FROM po WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return outcome.PO{}, outcome.ErrPONotFound
		}
		return outcome.PO{}, errors.Wrap(err, "getting program outcome")
	}
	return po, nil
}

func (repo outcomeRepository) CreateMapping(ctx context.Context, m outcome.COPOMapping) (outcome.COPOMapping, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO co_po_mapping (id, co_id, po_id, weight, created_at)
		VALUES (:id, :co_id, :po_id, :weight, :created_at)`,
		m,
	)
	if err != nil {
		if isUniqueViolation(err, "co_po_mapping_co_id_po_id_key") {
			return outcome.COPOMapping{}, outcome.ErrMappingExists
		}
		return outcome.COPOMapping{}, errors.Wrap(err, "inserting mapping")
	}
	return m, nil
}

func (repo outcomeRepository) QueryAllMappings(ctx context.Context, coID string) ([]outcome.COPOMapping, error) {
	mappings := make([]outcome.COPOMapping, 0)
	query := `SELECT * FROM co_po_mapping ORDER BY created_at`
	args := make([]interface{}, 0, 1)
	if coID != "" {
		query = `SELECT * FROM co_po_mapping WHERE co_id = $1 ORDER BY created_at`
		args = append(args, coID)
	}
	if err := repo.db.SelectContext(ctx, &mappings, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying mappings")
	}
	return mappings, nil
}

func (repo outcomeRepository) GetMappingByID(ctx context.Context, id string) (outcome.COPOMapping, error) {
	var m outcome.COPOMapping
	if err := repo.db.GetContext(ctx, &m, `SELECT * FROM co_po_mapping WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return outcome.COPOMapping{}, outcome.ErrMappingNotFound
		}
		return outcome.COPOMapping{}, errors.Wrap(err, "getting mapping")
	}
	return m, nil
}

func (repo outcomeRepository) UpdateMapping(ctx context.Context, m outcome.COPOMapping) (outcome.COPOMapping, error) {
	_, err := repo.db.NamedExecContext(ctx, `UPDATE co_po_mapping SET weight = :weight WHERE id = :id`, m)
	if err != nil {
		return outcome.COPOMapping{}, errors.Wrap(err, "updating mapping")
	}
	return m, nil
}

func (repo outcomeRepository) DeleteMapping(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM co_po_mapping WHERE id = $1`, id)
	return errors.Wrap(err, "deleting mapping")
}
