package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/interval-timer/internal/workout"
)

// Extensions lists the file extensions treated as workout files
var Extensions = []string{".yaml", ".yml"}

// IsWorkoutFile reports whether path has a workout file extension
func IsWorkoutFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

type document struct {
	Workouts []workout.Workout `yaml:"workouts"`
}

// Parse reads workouts from YAML. A document is either a single workout or a
// mapping with a "workouts" list; a stream may hold several documents.
func Parse(data []byte) ([]workout.Workout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var workouts []workout.Workout
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing workouts: %w", err)
		}

		if hasKey(&node, "workouts") {
			var doc document
			if err := node.Decode(&doc); err != nil {
				return nil, fmt.Errorf("parsing workouts: %w", err)
			}
			workouts = append(workouts, doc.Workouts...)
			continue
		}
		var w workout.Workout
		if err := node.Decode(&w); err != nil {
			return nil, fmt.Errorf("parsing workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	if len(workouts) == 0 {
		return nil, errors.New("no workouts found")
	}
	return workouts, nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// LoadFile parses the workouts in one file
func LoadFile(path string) ([]workout.Workout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	workouts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return workouts, nil
}

// Repository is the part of the workout store the importer writes to
type Repository interface {
	FindByName(ctx context.Context, name string) (*workout.Workout, error)
	Save(ctx context.Context, w *workout.Workout) (*workout.Workout, error)
}

// Importer loads workout files into the store. A workout replaces a stored
// one with the same name, so re-importing an edited file updates it.
type Importer struct {
	repo   Repository
	logger *log.Logger
}

func NewImporter(repo Repository, logger *log.Logger) *Importer {
	if repo == nil {
		panic("Importer: repo cannot be nil")
	}
	if logger == nil {
		panic("Importer: logger cannot be nil")
	}
	return &Importer{repo: repo, logger: logger}
}

// ImportFile validates and saves every workout in path. Invalid workouts are
// skipped and reported in the returned error; valid ones are still saved.
func (im *Importer) ImportFile(ctx context.Context, path string) ([]*workout.Workout, error) {
	workouts, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	var saved []*workout.Workout
	var errs []error
	for i := range workouts {
		w := workouts[i]
		if err := w.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: workout %q: %w", filepath.Base(path), w.Name, err))
			continue
		}

		w.ID = ""
		if existing, err := im.repo.FindByName(ctx, w.Name); err == nil {
			w.ID = existing.ID
		}
		stored, err := im.repo.Save(ctx, &w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		saved = append(saved, stored)
		im.logger.Infof("Importer: %s -> %q (%s)", filepath.Base(path), stored.Name, stored.ID)
	}
	return saved, errors.Join(errs...)
}

// ImportDir imports every workout file directly inside dir, in name order
func (im *Importer) ImportDir(ctx context.Context, dir string) ([]*workout.Workout, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && IsWorkoutFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var saved []*workout.Workout
	var errs []error
	for _, path := range paths {
		ws, err := im.ImportFile(ctx, path)
		saved = append(saved, ws...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return saved, errors.Join(errs...)
}
