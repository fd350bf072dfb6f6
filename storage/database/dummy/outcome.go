package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/tathmini/core/outcome"
)

type outcomeRepository struct {
	cos      *coTable
	pos      *poTable
	mappings *mappingTable
}

var _ outcome.Repository = (*outcomeRepository)(nil) // interface compliance check

func NewOutcomeRepository(db *DB) outcome.Repository {
	return &outcomeRepository{
		cos:      db.co,
		pos:      db.po,
		mappings: db.mapping,
	}
}

func (repo *outcomeRepository) CreateCO(_ context.Context, co outcome.CO) (outcome.CO, error) {
	repo.cos.Lock()
	defer repo.cos.Unlock()

	for _, c := range repo.cos.table {
		if c.SubjectID == co.SubjectID && c.Code == co.Code {
			return outcome.CO{}, outcome.ErrCOCodeExists
		}
	}
	repo.cos.table[co.ID] = &co
	return co, nil
}

func (repo *outcomeRepository) QueryAllCOs(_ context.Context, subjectID string) ([]outcome.CO, error) {
	repo.cos.RLock()
	defer repo.cos.RUnlock()

	cos := make([]outcome.CO, 0, len(repo.cos.table))
	for _, c := range repo.cos.table {
		if subjectID != "" && c.SubjectID != subjectID {
			continue
		}
		cos = append(cos, *c)
	}
	sort.Slice(cos, func(i, j int) bool { return cos[i].Code < cos[j].Code })
	return cos, nil
}

func (repo *outcomeRepository) GetCOByID(_ context.Context, id string) (outcome.CO, error) {
	repo.cos.RLock()
	defer repo.cos.RUnlock()

	if co, ok := repo.cos.table[id]; ok {
		return *co, nil
	}
	return outcome.CO{}, outcome.ErrCONotFound
}

func (repo *outcomeRepository) UpdateCO(_ context.Context, co outcome.CO) (outcome.CO, error) {
	repo.cos.Lock()
	defer repo.cos.Unlock()

	if _, ok := repo.cos.table[co.ID]; !ok {
		return outcome.CO{}, outcome.ErrCONotFound
	}
	for _, c := range repo.cos.table {
		if c.ID != co.ID && c.SubjectID == co.SubjectID && c.Code == co.Code {
			return outcome.CO{}, outcome.ErrCOCodeExists
		}
	}
	repo.cos.table[co.ID] = &co
	return co, nil
}

func (repo *outcomeRepository) DeleteCO(_ context.Context, id string) error {
	repo.cos.Lock()
	defer repo.cos.Unlock()

	delete(repo.cos.table, id)
	return nil
}

func (repo *outcomeRepository) CountMappingsByCO(_ context.Context, coID string) (int, error) {
	repo.mappings.RLock()
	defer repo.mappings.RUnlock()

	var count int
	for _, m := range repo.mappings.table {
		if m.COID == coID {
			count++
		}
	}
	return count, nil
}

func (repo *outcomeRepository) CreatePO(_ context.Context, po outcome.PO) (outcome.PO, error) {
	repo.pos.Lock()
	defer repo.pos.Unlock()

	for _, p := range repo.pos.table {
		if p.ProgramID == po.ProgramID && p.Code == po.Code {
			return outcome.PO{}, outcome.ErrPOCodeExists
		}
	}
	repo.pos.table[po.ID] = &po
	return po, nil
}

func (repo *outcomeRepository) QueryAllPOs(_ context.Context, programID string) ([]outcome.PO, error) {
	repo.pos.RLock()
	defer repo.pos.RUnlock()

	pos := make([]outcome.PO, 0, len(repo.pos.table))
	for _, p := range repo.pos.table {
		if programID != "" && p.ProgramID != programID {
			continue
		}
		pos = append(pos, *p)
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i].Code < pos[j].Code })
	return pos, nil
}

func (repo *outcomeRepository) GetPOByID(_ context.Context, id string) (outcome.PO, error) {
	repo.pos.RLock()
	defer repo.pos.RUnlock()

	if po, ok := repo.pos.table[id]; ok {
		return *po, nil
	}
	return outcome.PO{}, outcome.ErrPONotFound
}

func (repo *outcomeRepository) CreateMapping(_ context.Context, m outcome.COPOMapping) (outcome.COPOMapping, error) {
	repo.mappings.Lock()
	defer repo.mappings.Unlock()

	for _, existing := range repo.mappings.table {
		if existing.COID == m.COID && existing.POID == m.POID {
			return outcome.COPOMapping{}, outcome.ErrMappingExists
		}
	}
	repo.mappings.table[m.ID] = &m
	return m, nil
}

func (repo *outcomeRepository) QueryAllMappings(_ context.Context, coID string) ([]outcome.COPOMapping, error) {
	repo.mappings.RLock()
	defer repo.mappings.RUnlock()

	mappings := make([]outcome.COPOMapping, 0, len(repo.mappings.table))
	for _, m := range repo.mappings.table {
		if coID != "" && m.COID != coID {
			continue
		}
		mappings = append(mappings, *m)
	}
	sort.Slice(mappings, func(i, j int) bool { return mappings[i].CreatedAt.Before(mappings[j].CreatedAt) })
	return mappings, nil
}

func (repo *outcomeRepository) GetMappingByID(_ context.Context, id string) (outcome.COPOMapping, error) {
	repo.mappings.RLock()
	defer repo.mappings.RUnlock()

	if m, ok := repo.mappings.table[id]; ok {
		return *m, nil
	}
	return outcome.COPOMapping{}, outcome.ErrMappingNotFound
}

func (repo *outcomeRepository) UpdateMapping(_ context.Context, m outcome.COPOMapping) (outcome.COPOMapping, error) {
	repo.mappings.Lock()
	defer repo.mappings.Unlock()

	if _, ok := repo.mappings.table[m.ID]; !ok {
		return outcome.COPOMapping{}, outcome.ErrMappingNotFound
	}
	repo.mappings.table[m.ID] = &m
	return m, nil
}

func (repo *outcomeRepository) DeleteMapping(_ context.Context, id string) error {
	repo.mappings.Lock()
	defer repo.mappings.Unlock()

	delete(repo.mappings.table, id)
	return nil
}
