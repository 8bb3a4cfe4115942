package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/workout"
)

// EntityWorkout is the entity type workouts are stored under
const EntityWorkout = "Workout"

// WorkoutRepository reads and writes workouts in the entity store. The timer
// only ever reads them; writes come from imports and seeding.
type WorkoutRepository struct {
	store  *Store
	logger *log.Logger
}

func NewWorkoutRepository(store *Store, logger *log.Logger) *WorkoutRepository {
	if store == nil {
		panic("WorkoutRepository: store cannot be nil")
	}
	if logger == nil {
		panic("WorkoutRepository: logger cannot be nil")
	}
	return &WorkoutRepository{store: store, logger: logger}
}

// List returns all workouts. Records that cannot be decoded are logged and skipped.
func (r *WorkoutRepository) List(ctx context.Context) ([]*workout.Workout, error) {
	records, err := r.store.List(ctx, EntityWorkout)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(records), nil
}

// AssignedToTeam returns the workouts assigned to team
func (r *WorkoutRepository) AssignedToTeam(ctx context.Context, team string) ([]*workout.Workout, error) {
	records, err := r.store.Filter(ctx, EntityWorkout, map[string]any{"assigned_teams": team})
	if err != nil {
		return nil, err
	}
	return r.decodeAll(records), nil
}

// Get returns the workout with id, or ErrNotFound
func (r *WorkoutRepository) Get(ctx context.Context, id string) (*workout.Workout, error) {
	rec, err := r.store.Get(ctx, EntityWorkout, id)
	if err != nil {
		return nil, err
	}
	return workout.FromFields(rec.ID, rec.Fields)
}

// FindByName returns the first workout named name, ignoring case, or ErrNotFound
func (r *WorkoutRepository) FindByName(ctx context.Context, name string) (*workout.Workout, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range all {
		if strings.EqualFold(w.Name, name) {
			return w, nil
		}
	}
	return nil, ErrNotFound
}

// Resolve looks a workout up by id, falling back to its name
func (r *WorkoutRepository) Resolve(ctx context.Context, idOrName string) (*workout.Workout, error) {
	w, err := r.Get(ctx, idOrName)
	if errors.Is(err, ErrNotFound) {
		return r.FindByName(ctx, idOrName)
	}
	return w, err
}

// Save creates w when it has no id and updates it otherwise. The stored
// workout is returned with its id set.
func (r *WorkoutRepository) Save(ctx context.Context, w *workout.Workout) (*workout.Workout, error) {
	fields, err := w.Fields()
	if err != nil {
		return nil, err
	}

	var rec Record
	if w.ID == "" {
		rec, err = r.store.Create(ctx, EntityWorkout, fields)
	} else {
		rec, err = r.store.Update(ctx, EntityWorkout, w.ID, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("saving workout %q: %w", w.Name, err)
	}

	r.logger.Debugf("WorkoutRepository: saved %q as %s", w.Name, rec.ID)
	return workout.FromFields(rec.ID, rec.Fields)
}

// Delete removes the workout with id
func (r *WorkoutRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, EntityWorkout, id)
}

func (r *WorkoutRepository) decodeAll(records []Record) []*workout.Workout {
	workouts := make([]*workout.Workout, 0, len(records))
	for _, rec := range records {
		w, err := workout.FromFields(rec.ID, rec.Fields)
		if err != nil {
			r.logger.Warnf("WorkoutRepository: skipping workout %s: %v", rec.ID, err)
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts
}
