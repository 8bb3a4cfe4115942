package trainer

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

type uiModelPersistenceData struct {
	LastWorkoutID string `json:"last_workout_id"`
}

type uiModelPersistence struct {
	filePath string
	data     uiModelPersistenceData
	logger   *log.Logger
}

// DefaultUIStatePath is where the UI remembers its selections between runs
func DefaultUIStatePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".interval-timer", "ui_state.json")
}

func newUIModelPersistence(filePath string, logger *log.Logger) *uiModelPersistence {
	p := &uiModelPersistence{
		filePath: filePath,
		logger:   logger,
	}
	p.load()
	return p
}

func (p *uiModelPersistence) getLastWorkoutID() string {
	return p.data.LastWorkoutID
}

func (p *uiModelPersistence) setLastWorkoutID(id string) {
	if p.data.LastWorkoutID == id {
		return
	}
	p.logger.Debugf("UIModelPersistence: setLastWorkoutID %q", id)
	p.data.LastWorkoutID = id
	p.save()
}

func (p *uiModelPersistence) load() {
	p.data = uiModelPersistenceData{}
	if p.filePath == "" {
		return
	}
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Debugf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		p.logger.Warnf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		p.data = uiModelPersistenceData{}
		return
	}
	p.logger.Debugf("UIModelPersistence: load %s -> %+v", p.filePath, p.data)
}

func (p *uiModelPersistence) save() {
	if p.filePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0o755); err != nil {
		p.logger.Errorf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Errorf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0o644); err != nil {
		p.logger.Errorf("UIModelPersistence: save %s failed: %v", p.filePath, err)
	}
}
