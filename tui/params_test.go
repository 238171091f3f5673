// ABOUTME: Tests for ParamManager parameter adjustment and navigation
// ABOUTME: Verifies boundary checking, choice cycling, and reset functionality

package tui

import (
	"math"
	"testing"

	"genetic-lab/config"
	"genetic-lab/ga"
)

func TestParamManager_Selection(t *testing.T) {
	engine := config.DefaultConfig("knapsack").Engine
	pm := NewParamManager(buildParams(&engine))
	last := pm.Len() - 1

	pm.SelectPrevious()

	if pm.Selected() != 0 {
		t.Errorf("SelectPrevious at start moved to %d", pm.Selected())
	}

	pm.SelectNext()

	if pm.Selected() != 1 {
		t.Errorf("SelectNext = %d, want 1", pm.Selected())
	}

	pm.SetSelected(last)
	pm.SelectNext()

	if pm.Selected() != last {
		t.Errorf("SelectNext at end moved to %d", pm.Selected())
	}

	pm.SetSelected(-1)
	pm.SetSelected(last + 1)

	if pm.Selected() != last {
		t.Errorf("out of range SetSelected changed selection to %d", pm.Selected())
	}

	if pm.Get(last+1) != nil {
		t.Error("Get beyond the end should return nil")
	}
}

func TestParamManager_BindsEngineFields(t *testing.T) {
	engine := config.DefaultConfig("knapsack").Engine
	pm := NewParamManager(buildParams(&engine))

	if pm.Len() != 13 {
		t.Fatalf("Len() = %d, want 13", pm.Len())
	}

	// Population size is the first parameter and steps by two
	before := engine.PopulationSize
	if !pm.Increase() {
		t.Fatal("Increase should change the population size")
	}

	if engine.PopulationSize != before+2 {
		t.Errorf("PopulationSize = %d, want %d", engine.PopulationSize, before+2)
	}

	if got := pm.GetSelected().Format(); got != "32" {
		t.Errorf("Format() = %q, want \"32\"", got)
	}
}

func TestParamManager_Float(t *testing.T) {
	tests := []struct {
		name         string
		initial      float64
		increase     bool
		expectChange bool
		expected     float64
	}{
		{"increase from middle", 0.5, true, true, 0.6},
		{"increase to max", 0.9, true, true, 1.0},
		{"increase at max", 1.0, true, false, 1.0},
		{"decrease from middle", 0.5, false, true, 0.4},
		{"decrease to min", 0.1, false, true, 0.0},
		{"decrease at min", 0.0, false, false, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val := tt.initial
			pm := NewParamManager([]Parameter{{Name: "p", Value: &val, Min: 0, Max: 1, Step: 0.1}})

			changed := pm.Decrease
			if tt.increase {
				changed = pm.Increase
			}

			if got := changed(); got != tt.expectChange {
				t.Errorf("changed = %v, want %v", got, tt.expectChange)
			}

			if math.Abs(val-tt.expected) > 1e-9 {
				t.Errorf("value = %.4f, want %.4f", val, tt.expected)
			}
		})
	}
}

func TestParamManager_Int(t *testing.T) {
	val := 1
	pm := NewParamManager([]Parameter{{Name: "elitism", IntValue: &val, Min: 0, Max: 2, Step: 1}})

	if !pm.Decrease() || val != 0 {
		t.Fatalf("Decrease from 1: value = %d, want 0", val)
	}

	if pm.Decrease() {
		t.Error("Decrease below Min should be refused")
	}

	pm.Increase()
	pm.Increase()

	if pm.Increase() {
		t.Error("Increase above Max should be refused")
	}

	if val != 2 {
		t.Errorf("value = %d, want 2", val)
	}
}

func TestParamManager_ChoiceWraps(t *testing.T) {
	engine := config.DefaultConfig("knapsack").Engine
	pm := NewParamManager(buildParams(&engine))

	for i := range pm.Len() {
		if pm.Get(i).Name == paramCrossover {
			pm.SetSelected(i)
		}
	}

	if !pm.GetSelected().IsChoice() {
		t.Fatal("crossover parameter should be a choice")
	}

	seen := map[string]bool{engine.Crossover: true}

	for range 3 {
		pm.Increase()
		seen[engine.Crossover] = true
	}

	if engine.Crossover != string(ga.CrossSinglePoint) {
		t.Errorf("three steps through three operators ended at %q", engine.Crossover)
	}

	if len(seen) != 3 {
		t.Errorf("visited %d operators, want 3", len(seen))
	}

	pm.Decrease()

	if engine.Crossover != string(ga.CrossUniform) {
		t.Errorf("Decrease from the first operator = %q, want %q", engine.Crossover, ga.CrossUniform)
	}
}

func TestParameter_Format(t *testing.T) {
	fine, coarse := 0.025, 0.8
	name := "rank"

	tests := []struct {
		param Parameter
		want  string
	}{
		{Parameter{Value: &fine, Step: 0.005}, "0.025"},
		{Parameter{Value: &coarse, Step: 0.05}, "0.80"},
		{Parameter{Choice: &name}, "rank"},
		{Parameter{}, "N/A"},
	}

	for _, tt := range tests {
		if got := tt.param.Format(); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}

func TestParamManager_ResetToDefaults(t *testing.T) {
	engine := config.DefaultConfig("function").Engine
	pm := NewParamManager(buildParams(&engine))

	// Move every parameter away from its preset
	for i := range pm.Len() {
		pm.SetSelected(i)

		if !pm.Increase() {
			pm.Decrease()
		}
	}

	preset := config.DefaultConfig("function").Engine
	pm.ResetToDefaults(preset)

	if engine != preset {
		t.Errorf("after reset engine = %+v, want %+v", engine, preset)
	}
}
