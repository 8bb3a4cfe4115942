package workout

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func secs(n int) Duration { return DurationOf(n) }

func TestDuration_TotalSeconds(t *testing.T) {
	assert.Equal(t, 0, Duration{}.TotalSeconds())
	assert.Equal(t, 150, Duration{Minutes: 2, Seconds: 30}.TotalSeconds())
	assert.Equal(t, Duration{Minutes: 1, Seconds: 5}, DurationOf(65))
	assert.Equal(t, Duration{}, DurationOf(-3))
	assert.Equal(t, "2:05", Duration{Minutes: 2, Seconds: 5}.String())
}

func TestDuration_Validate(t *testing.T) {
	assert.NoError(t, Duration{Minutes: 3, Seconds: 59}.Validate("workTime"))

	err := Duration{Minutes: -1}.Validate("workTime")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var cfgErr *ConfigError
	require.True(t, errors.As(Duration{Seconds: 60}.Validate("restTime"), &cfgErr))
	assert.Equal(t, "restTime", cfgErr.Field)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Duration
	}{
		{"numbers", `{"minutes":1,"seconds":30}`, Duration{1, 30}},
		{"strings", `{"minutes":"2","seconds":"05"}`, Duration{2, 5}},
		{"empty strings", `{"minutes":"","seconds":""}`, Duration{}},
		{"missing seconds", `{"minutes":3}`, Duration{3, 0}},
		{"clock string", `"1:15"`, Duration{1, 15}},
		{"bare seconds", `95`, Duration{1, 35}},
		{"null", `null`, Duration{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.in), &d))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDuration_UnmarshalJSON_NonNumeric(t *testing.T) {
	var d Duration
	err := json.Unmarshal([]byte(`{"minutes":"abc","seconds":0}`), &d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var doc struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
		C Duration `yaml:"c"`
	}
	src := "a: {minutes: 1, seconds: 10}\nb: \"0:45\"\nc: 20\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	assert.Equal(t, Duration{1, 10}, doc.A)
	assert.Equal(t, Duration{0, 45}, doc.B)
	assert.Equal(t, Duration{0, 20}, doc.C)
}

func TestRepCount_Decode(t *testing.T) {
	var ex Exercise
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Squat","reps":10,"perSetReps":["8",6,""],"usePerSetReps":true}`), &ex))
	assert.Equal(t, RepCount("10"), ex.Reps)
	assert.Equal(t, []RepCount{"8", "6", ""}, ex.PerSetReps)

	assert.Equal(t, RepCount("8"), ex.RepsForSet(1))
	assert.Equal(t, RepCount("6"), ex.RepsForSet(2))
	assert.Equal(t, RepCount("10"), ex.RepsForSet(3), "empty override falls back")
	assert.Equal(t, RepCount("10"), ex.RepsForSet(4), "missing override falls back")

	ex.UsePerSetReps = false
	assert.Equal(t, RepCount("10"), ex.RepsForSet(1))
}

func TestConfig_UnmarshalJSON_StringSets(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"sets":"3","workTime":{"minutes":0,"seconds":20}}`), &c))
	assert.Equal(t, 3, c.Sets)
	assert.Equal(t, 20, c.WorkTime.TotalSeconds())
}

func TestTotalSeconds_SameExercise(t *testing.T) {
	cfg := Config{
		Sets:            2,
		SetupTime:       secs(5),
		RestBetweenSets: secs(10),
		Exercises: []Exercise{{
			Name:     "Burpees",
			WorkTime: &Duration{Seconds: 10},
			RestTime: &Duration{Seconds: 5},
		}},
	}
	assert.Equal(t, 45, cfg.TotalSeconds(TimerTypeWholeRoomSame))
}

func TestTotalSeconds_SameExercise_FallsBackToSharedTimes(t *testing.T) {
	cfg := Config{
		Sets:      1,
		WorkTime:  secs(30),
		RestTime:  secs(15),
		Exercises: []Exercise{{Name: "A"}, {Name: "B", WorkTime: &Duration{Seconds: 20}}},
	}
	assert.Equal(t, (30+15)+(20+15), cfg.TotalSeconds(TimerTypeWholeRoomSame))
}

func TestTotalSeconds_Rotational(t *testing.T) {
	cfg := Config{
		Sets:            3,
		SetupTime:       secs(10),
		WorkTime:        secs(40),
		RestTime:        secs(20),
		RestBetweenSets: secs(60),
		Exercises:       []Exercise{{Name: "A"}, {Name: "B"}, {Name: "C"}},
	}
	assert.Equal(t, 10+3*(3*60)+2*60, cfg.TotalSeconds(TimerTypeWholeRoomRotational))
}

func TestTotalSeconds_Stations(t *testing.T) {
	cfg := Config{
		Sets:     1,
		WorkTime: secs(20),
		RestTime: secs(10),
		Stations: []Station{
			{Exercises: []Exercise{{Name: "Row"}}},
			{Exercises: []Exercise{{Name: "Bike"}}},
		},
	}
	assert.Equal(t, 30, cfg.TotalSeconds(TimerTypeStations))

	cfg.RotateStations = true
	cfg.Sets = 2
	cfg.RestBetweenSets = secs(15)
	cfg.Stations[1].Exercises = append(cfg.Stations[1].Exercises, Exercise{Name: "Ski"})
	// 2 sets * 2 rotations * 2 slots * 30 + 1 * 2 * 15
	assert.Equal(t, 2*2*2*30+1*2*15, cfg.TotalSeconds(TimerTypeStations))
}

func TestTotalSeconds_GetItDone(t *testing.T) {
	cfg := Config{TotalTime: Duration{Minutes: 2, Seconds: 30}}
	assert.Equal(t, 150, cfg.TotalSeconds(TimerTypeGetItDone))
}

func TestTotalSeconds_EmptyExercises(t *testing.T) {
	cfg := Config{Sets: 2, SetupTime: secs(5), WorkTime: secs(10)}
	assert.Equal(t, 5, cfg.TotalSeconds(TimerTypeWholeRoomSame))
	assert.Equal(t, 5, cfg.TotalSeconds(TimerTypeWholeRoomRotational))
	assert.Equal(t, 5, cfg.TotalSeconds(TimerTypeStations))
	assert.Equal(t, 0, cfg.TotalSeconds(TimerType("bogus")))
}

func TestWorkout_TotalSecondsIsSumOfSections(t *testing.T) {
	w := Workout{
		Name: "Combo",
		TimerSections: []Section{
			{Name: "Warmup", TimerType: TimerTypeGetItDone, Config: Config{TotalTime: secs(45), Exercises: []Exercise{{Name: "Jog"}}}},
			{Name: "Finisher", TimerType: TimerTypeGetItDone, Config: Config{TotalTime: secs(30), Exercises: []Exercise{{Name: "Plank"}}}},
		},
	}
	assert.Equal(t, 75, w.TotalSeconds())
}

func TestWorkout_LegacySections(t *testing.T) {
	w := Workout{
		Name:          "Old",
		WorkoutType:   TimerTypeGetItDone,
		WorkoutConfig: &Config{TotalTime: secs(60)},
	}
	sections := w.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, "Old", sections[0].Name)
	assert.Equal(t, TimerTypeGetItDone, sections[0].TimerType)

	assert.Empty(t, Workout{Name: "Empty"}.Sections())
}

func TestValidate(t *testing.T) {
	valid := Config{Sets: 1, WorkTime: secs(10), Exercises: []Exercise{{Name: "A"}}}

	tests := []struct {
		name      string
		section   Section
		wantField string
		unknown   bool
	}{
		{"unknown type", Section{Name: "x", TimerType: "tabata", Config: valid}, "timer_type", true},
		{"no exercises", Section{TimerType: TimerTypeWholeRoomSame, Config: Config{Sets: 1, WorkTime: secs(10)}}, "exercises", false},
		{"no stations", Section{TimerType: TimerTypeStations, Config: valid}, "stations", false},
		{"empty stations", Section{TimerType: TimerTypeStations, Config: Config{Sets: 1, WorkTime: secs(5), Stations: []Station{{}}}}, "stations", false},
		{"zero sets", Section{TimerType: TimerTypeWholeRoomRotational, Config: Config{WorkTime: secs(10), Exercises: valid.Exercises}}, "sets", false},
		{"negative duration", Section{TimerType: TimerTypeWholeRoomSame, Config: Config{Sets: 1, WorkTime: Duration{Minutes: -1}, Exercises: valid.Exercises}}, "workTime", false},
		{"zero length", Section{TimerType: TimerTypeWholeRoomSame, Config: Config{Sets: 1, Exercises: valid.Exercises}}, "config", false},
		{"get it done without time", Section{TimerType: TimerTypeGetItDone, Config: Config{Exercises: valid.Exercises}}, "config", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.section.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Equal(t, tt.unknown, errors.Is(err, ErrUnknownTimerType))
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}

	assert.NoError(t, Section{TimerType: TimerTypeWholeRoomSame, Config: valid}.Validate())
}

func TestWorkout_Validate(t *testing.T) {
	err := Workout{Name: "Nothing"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	err = Workout{Name: "Bad", TimerSections: []Section{{TimerType: "nope"}}}.Validate()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "1", cfgErr.Section)
}

func TestFromFields_FlatAndNested(t *testing.T) {
	section := map[string]any{
		"name":       "Main",
		"timer_type": "get_it_done",
		"config": map[string]any{
			"totalTime": map[string]any{"minutes": "1", "seconds": 0},
			"exercises": []any{map[string]any{"name": "Wall balls", "reps": 50}},
		},
	}

	flat, err := FromFields("abc", map[string]any{"name": "Flat", "timer_sections": []any{section}})
	require.NoError(t, err)
	assert.Equal(t, "abc", flat.ID)
	assert.Equal(t, "Flat", flat.Name)
	require.Len(t, flat.Sections(), 1)
	assert.Equal(t, 60, flat.TotalSeconds())
	assert.Equal(t, RepCount("50"), flat.TimerSections[0].Config.Exercises[0].Reps)

	nested, err := FromFields("def", map[string]any{
		"created_by": "coach",
		"data":       map[string]any{"name": "Nested", "timer_sections": []any{section}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nested", nested.Name)
	assert.Equal(t, 60, nested.TotalSeconds())
}

func TestFromFields_EncodedSections(t *testing.T) {
	w, err := FromFields("id1", map[string]any{
		"name":           "Encoded",
		"timer_sections": `[{"name":"A","timer_type":"get_it_done","config":{"totalTime":{"minutes":0,"seconds":30}}}]`,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, w.TotalSeconds())
}

func TestFields_RoundTrip(t *testing.T) {
	w := Workout{
		ID:   "ignored",
		Name: "Round",
		TimerSections: []Section{{
			Name: "S", TimerType: TimerTypeWholeRoomSame,
			Config: Config{Sets: 2, WorkTime: secs(20), Exercises: []Exercise{{Name: "Lunge", Reps: "12"}}},
		}},
	}
	fields, err := w.Fields()
	require.NoError(t, err)
	_, hasID := fields["id"]
	assert.False(t, hasID)

	back, err := FromFields("new-id", fields)
	require.NoError(t, err)
	assert.Equal(t, "new-id", back.ID)
	assert.Equal(t, w.TimerSections, back.TimerSections)
}
