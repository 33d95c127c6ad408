package memory

import (
	"fmt"
	"sort"

	"github.com/avoronkov/tasktracker/internal/models"
)

func (s *Store) SavePlan(plan *models.Plan) (int64, error) {
	p := plan.Clone()
	if p.ID == 0 {
		p.ID = s.nextPlanID
	}
	if p.ID >= s.nextPlanID {
		s.nextPlanID = p.ID + 1
	}
	if _, ok := s.plans[p.ID]; ok {
		return 0, fmt.Errorf("plan %d already exists", p.ID)
	}
	// Exclude is derived from override rows, never stored on the plan.
	numbers := p.Exclude
	p.Exclude = nil
	s.plans[p.ID] = p
	for _, n := range numbers {
		if err := s.SaveOverride(p.ID, models.Override{Number: n, Kind: models.ExcludeDeleted}); err != nil {
			return 0, err
		}
	}
	return p.ID, nil
}

func (s *Store) GetPlan(planID int64) (*models.Plan, error) {
	p, ok := s.plans[planID]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	out.Exclude = sortedNumbers(s.overrides[planID])
	return out, nil
}

func (s *Store) GetPlanByTemplateTask(tid int64) (*models.Plan, error) {
	for id, p := range s.plans {
		if p.TID == tid {
			return s.GetPlan(id)
		}
	}
	return nil, nil
}

func (s *Store) GetPlanByEditedTask(tid int64) (*models.Plan, error) {
	for id, overrides := range s.overrides {
		for _, o := range overrides {
			if o.Kind == models.ExcludeEdited && o.TaskID != nil && *o.TaskID == tid {
				return s.GetPlan(id)
			}
		}
	}
	return nil, nil
}

func (s *Store) ListPlans() ([]models.Plan, error) {
	ids := make([]int64, 0, len(s.plans))
	for id := range s.plans {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Plan
	for _, id := range ids {
		p, _ := s.GetPlan(id)
		out = append(out, *p)
	}
	return out, nil
}

func (s *Store) UpdatePlan(plan *models.Plan) error {
	p, ok := s.plans[plan.ID]
	if !ok {
		return fmt.Errorf("plan %d does not exist", plan.ID)
	}
	p.TID = plan.TID
	p.Shift = plan.Shift
	if plan.End != nil {
		end := *plan.End
		p.End = &end
	} else {
		p.End = nil
	}
	return nil
}

func (s *Store) DeletePlan(planID int64) error {
	if _, ok := s.plans[planID]; !ok {
		return fmt.Errorf("plan %d does not exist", planID)
	}
	delete(s.plans, planID)
	delete(s.overrides, planID)
	return nil
}

func (s *Store) SaveOverride(planID int64, o models.Override) error {
	if _, ok := s.plans[planID]; !ok {
		return fmt.Errorf("plan %d does not exist", planID)
	}
	for _, existing := range s.overrides[planID] {
		if existing.Number == o.Number {
			return fmt.Errorf("plan %d already has an override for repeat %d", planID, o.Number)
		}
	}
	if o.TaskID != nil {
		tid := *o.TaskID
		o.TaskID = &tid
	}
	s.overrides[planID] = append(s.overrides[planID], o)
	return nil
}

func (s *Store) DeleteOverride(planID int64, number int) error {
	overrides := s.overrides[planID]
	for i, o := range overrides {
		if o.Number == number {
			s.overrides[planID] = append(overrides[:i], overrides[i+1:]...)
			return nil
		}
	}
	// Deleting an absent override is a no-op, matching row-count 0
	// deletes in the SQL backends.
	return nil
}

func (s *Store) ListOverrides(planID int64) ([]models.Override, error) {
	overrides := append([]models.Override(nil), s.overrides[planID]...)
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].Number < overrides[j].Number })
	return overrides, nil
}
