package postgres

import (
	"database/sql"
	"fmt"

	"github.com/avoronkov/tasktracker/internal/models"
)

func (s *Store) SavePlan(plan *models.Plan) (int64, error) {
	var planID int64
	err := s.q.QueryRow(`INSERT INTO plan (tid, shift, end_time) VALUES ($1, $2, $3) RETURNING plan_id`,
		plan.TID, plan.Shift, nullInt64(plan.End)).Scan(&planID)
	if err != nil {
		return 0, fmt.Errorf("failed to save plan: %w", err)
	}
	for _, number := range plan.Exclude {
		if err := s.SaveOverride(planID, models.Override{
			Number: number,
			Kind:   models.ExcludeDeleted,
		}); err != nil {
			return 0, err
		}
	}
	return planID, nil
}

func (s *Store) GetPlan(planID int64) (*models.Plan, error) {
	row := s.q.QueryRow(`SELECT plan_id, tid, shift, end_time FROM plan WHERE plan_id = $1`, planID)
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan %d: %w", planID, err)
	}
	if err := s.loadExclude(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Store) GetPlanByTemplateTask(tid int64) (*models.Plan, error) {
	row := s.q.QueryRow(`SELECT plan_id, tid, shift, end_time FROM plan WHERE tid = $1`, tid)
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan for task %d: %w", tid, err)
	}
	if err := s.loadExclude(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Store) GetPlanByEditedTask(tid int64) (*models.Plan, error) {
	row := s.q.QueryRow(`SELECT plan_id FROM plan_override WHERE tid = $1 AND kind = $2`,
		tid, int(models.ExcludeEdited))
	var planID int64
	err := row.Scan(&planID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan for edited task %d: %w", tid, err)
	}
	return s.GetPlan(planID)
}

func (s *Store) ListPlans() ([]models.Plan, error) {
	rows, err := s.q.Query(`SELECT plan_id, tid, shift, end_time FROM plan ORDER BY plan_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range plans {
		if err := s.loadExclude(&plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (s *Store) UpdatePlan(plan *models.Plan) error {
	res, err := s.q.Exec(`UPDATE plan SET tid = $1, shift = $2, end_time = $3 WHERE plan_id = $4`,
		plan.TID, plan.Shift, nullInt64(plan.End), plan.ID)
	if err != nil {
		return fmt.Errorf("failed to update plan %d: %w", plan.ID, err)
	}
	return requireOneRow(res, "plan", plan.ID)
}

func (s *Store) DeletePlan(planID int64) error {
	if _, err := s.q.Exec(`DELETE FROM plan_override WHERE plan_id = $1`, planID); err != nil {
		return fmt.Errorf("failed to delete overrides of plan %d: %w", planID, err)
	}
	res, err := s.q.Exec(`DELETE FROM plan WHERE plan_id = $1`, planID)
	if err != nil {
		return fmt.Errorf("failed to delete plan %d: %w", planID, err)
	}
	return requireOneRow(res, "plan", planID)
}

func (s *Store) SaveOverride(planID int64, o models.Override) error {
	_, err := s.q.Exec(`INSERT INTO plan_override (plan_id, number, kind, tid) VALUES ($1, $2, $3, $4)`,
		planID, o.Number, int(o.Kind), nullInt64(o.TaskID))
	if err != nil {
		return fmt.Errorf("failed to save override %d of plan %d: %w", o.Number, planID, err)
	}
	return nil
}

func (s *Store) DeleteOverride(planID int64, number int) error {
	_, err := s.q.Exec(`DELETE FROM plan_override WHERE plan_id = $1 AND number = $2`, planID, number)
	if err != nil {
		return fmt.Errorf("failed to delete override %d of plan %d: %w", number, planID, err)
	}
	return nil
}

func (s *Store) ListOverrides(planID int64) ([]models.Override, error) {
	rows, err := s.q.Query(`SELECT number, kind, tid FROM plan_override
		WHERE plan_id = $1 ORDER BY number`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides of plan %d: %w", planID, err)
	}
	defer rows.Close()

	var overrides []models.Override
	for rows.Next() {
		var o models.Override
		var kind int
		var tid sql.NullInt64
		if err := rows.Scan(&o.Number, &kind, &tid); err != nil {
			return nil, err
		}
		o.Kind = models.ExcludeKind(kind)
		o.TaskID = int64Ptr(tid)
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (s *Store) loadExclude(plan *models.Plan) error {
	overrides, err := s.ListOverrides(plan.ID)
	if err != nil {
		return err
	}
	plan.Exclude = make([]int, 0, len(overrides))
	for _, o := range overrides {
		plan.Exclude = append(plan.Exclude, o.Number)
	}
	return nil
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	var plan models.Plan
	var end sql.NullInt64
	if err := row.Scan(&plan.ID, &plan.TID, &plan.Shift, &end); err != nil {
		return nil, err
	}
	plan.End = int64Ptr(end)
	return &plan, nil
}
