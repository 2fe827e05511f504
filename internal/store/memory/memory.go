// Package memory is a map-backed entity store. It backs the engine and
// handler tests and doubles as the optimistic mirror's local cache in
// integration harnesses.
package memory

import (
	"context"
	"sort"
	"sync"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/store"
)

// New returns a store.Store with every table backed by in-process maps.
func New() store.Store {
	s := &state{
		projects:     make(map[int]model.Project),
		phases:       make(map[int]model.Phase),
		deliverables: make(map[int]model.Deliverable),
		tasks:        make(map[int]model.Task),
		grants:       make(map[grantKey]model.PermissionGrant),
	}
	return store.Store{
		Projects:     &projectStore{s},
		Phases:       &phaseStore{s},
		Deliverables: &deliverableStore{s},
		Tasks:        &taskStore{s},
		Grants:       &grantStore{s},
	}
}

type grantKey struct {
	projectID int
	userID    int
}

type state struct {
	mu           sync.RWMutex
	nextID       int
	projects     map[int]model.Project
	phases       map[int]model.Phase
	deliverables map[int]model.Deliverable
	tasks        map[int]model.Task
	grants       map[grantKey]model.PermissionGrant
}

func (s *state) allocID() int {
	s.nextID++
	return s.nextID
}

type projectStore struct{ s *state }

func (ps *projectStore) Insert(_ context.Context, p *model.Project) (int, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	p.ID = ps.s.allocID()
	ps.s.projects[p.ID] = *p
	return p.ID, nil
}

func (ps *projectStore) Get(_ context.Context, id int) (*model.Project, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()
	p, ok := ps.s.projects[id]
	if !ok {
		return nil, apperr.NotFound("project", id)
	}
	return &p, nil
}

func (ps *projectStore) Save(_ context.Context, p *model.Project) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	if _, ok := ps.s.projects[p.ID]; !ok {
		return apperr.NotFound("project", p.ID)
	}
	ps.s.projects[p.ID] = *p
	return nil
}

func (ps *projectStore) Delete(_ context.Context, id int) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	delete(ps.s.projects, id)
	return nil
}

type phaseStore struct{ s *state }

func (ps *phaseStore) Insert(_ context.Context, p *model.Phase) (int, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	p.ID = ps.s.allocID()
	ps.s.phases[p.ID] = *p
	return p.ID, nil
}

func (ps *phaseStore) Get(_ context.Context, id int) (*model.Phase, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()
	p, ok := ps.s.phases[id]
	if !ok {
		return nil, apperr.NotFound("phase", id)
	}
	return &p, nil
}

func (ps *phaseStore) Save(_ context.Context, p *model.Phase) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	if _, ok := ps.s.phases[p.ID]; !ok {
		return apperr.NotFound("phase", p.ID)
	}
	ps.s.phases[p.ID] = *p
	return nil
}

func (ps *phaseStore) Delete(_ context.Context, id int) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	delete(ps.s.phases, id)
	return nil
}

func (ps *phaseStore) FindByProject(_ context.Context, projectID int) ([]model.Phase, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()
	var out []model.Phase
	for _, p := range ps.s.phases {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type deliverableStore struct{ s *state }

func (ds *deliverableStore) Insert(_ context.Context, d *model.Deliverable) (int, error) {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()
	d.ID = ds.s.allocID()
	ds.s.deliverables[d.ID] = *d
	return d.ID, nil
}

func (ds *deliverableStore) Get(_ context.Context, id int) (*model.Deliverable, error) {
	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()
	d, ok := ds.s.deliverables[id]
	if !ok {
		return nil, apperr.NotFound("deliverable", id)
	}
	return &d, nil
}

func (ds *deliverableStore) Save(_ context.Context, d *model.Deliverable) error {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()
	if _, ok := ds.s.deliverables[d.ID]; !ok {
		return apperr.NotFound("deliverable", d.ID)
	}
	ds.s.deliverables[d.ID] = *d
	return nil
}

func (ds *deliverableStore) Delete(_ context.Context, id int) error {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()
	delete(ds.s.deliverables, id)
	return nil
}

func (ds *deliverableStore) FindByPhase(_ context.Context, phaseID int) ([]model.Deliverable, error) {
	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()
	var out []model.Deliverable
	for _, d := range ds.s.deliverables {
		if d.PhaseID == phaseID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type taskStore struct{ s *state }

func (ts *taskStore) Insert(_ context.Context, t *model.Task) (int, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()
	t.ID = ts.s.allocID()
	ts.s.tasks[t.ID] = *t
	return t.ID, nil
}

func (ts *taskStore) Get(_ context.Context, id int) (*model.Task, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()
	t, ok := ts.s.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task", id)
	}
	return &t, nil
}

func (ts *taskStore) Save(_ context.Context, t *model.Task) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()
	if _, ok := ts.s.tasks[t.ID]; !ok {
		return apperr.NotFound("task", t.ID)
	}
	ts.s.tasks[t.ID] = *t
	return nil
}

func (ts *taskStore) Delete(_ context.Context, id int) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()
	delete(ts.s.tasks, id)
	return nil
}

func (ts *taskStore) FindByDeliverable(_ context.Context, deliverableID int) ([]model.Task, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()
	var out []model.Task
	for _, t := range ts.s.tasks {
		if t.DeliverableID == deliverableID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type grantStore struct{ s *state }

func (gs *grantStore) Get(_ context.Context, projectID, userID int) (*model.PermissionGrant, error) {
	gs.s.mu.RLock()
	defer gs.s.mu.RUnlock()
	g, ok := gs.s.grants[grantKey{projectID, userID}]
	if !ok {
		return nil, apperr.NotFound("grant", userID)
	}
	return &g, nil
}

func (gs *grantStore) Put(_ context.Context, g *model.PermissionGrant) error {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()
	gs.s.grants[grantKey{g.ProjectID, g.UserID}] = *g
	return nil
}
