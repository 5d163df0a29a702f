package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/montyhall/internal/eval"
	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/model"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Scenarios       []FixtureScenario       `json:"scenarios"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureScenario mirrors replay.Scenario with JSON tags.
type FixtureScenario struct {
	ID             string      `json:"id"`
	ContestantDoor int         `json:"contestant_door"`
	HostDoor       *int        `json:"host_door,omitempty"`
	Expected       *[3]float64 `json:"expected,omitempty"`
}

// FixtureExpectedResult captures the expected action per scenario.
type FixtureExpectedResult struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// FixtureConfig bundles the replay settings.
type FixtureConfig struct {
	Samples        int     `json:"samples"`
	Particles      int     `json:"particles"`
	Seed           uint64  `json:"seed"`
	Tolerance      float64 `json:"tolerance"`
	MinESSFraction float64 `json:"min_ess_fraction"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToScenario converts a FixtureScenario to a domain Scenario.
func (fs *FixtureScenario) ToScenario() Scenario {
	sc := Scenario{
		ID:             fs.ID,
		ContestantDoor: model.Door(fs.ContestantDoor),
	}
	if fs.HostDoor != nil {
		h := model.Door(*fs.HostDoor)
		sc.HostDoor = &h
	}
	if fs.Expected != nil {
		p := model.ProbabilityVector(*fs.Expected)
		sc.Expected = &p
	}
	return sc
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
// Zero fields fall back to defaults.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	cfg := DefaultReplayConfig()
	if fc.Samples > 0 {
		cfg.SimConfig.Samples = fc.Samples
	}
	if fc.Particles > 0 {
		cfg.SimConfig.Particles = fc.Particles
	}
	if fc.Seed != 0 {
		cfg.SimConfig.Seed = fc.Seed
	}
	if fc.Tolerance > 0 {
		cfg.EvalConfig = eval.EvalConfig{Tolerance: fc.Tolerance, SumTolerance: cfg.EvalConfig.SumTolerance}
	}
	if fc.MinESSFraction > 0 {
		cfg.GateConfig = gate.GateConfig{MinESSFraction: fc.MinESSFraction}
	}
	return cfg
}

// FromReplayConfig is the inverse of ToReplayConfig.
func FromReplayConfig(cfg ReplayConfig) FixtureConfig {
	return FixtureConfig{
		Samples:        cfg.SimConfig.Samples,
		Particles:      cfg.SimConfig.Particles,
		Seed:           cfg.SimConfig.Seed,
		Tolerance:      cfg.EvalConfig.Tolerance,
		MinESSFraction: cfg.GateConfig.MinESSFraction,
	}
}

// ToScenarios converts every fixture scenario.
func (f *Fixture) ToScenarios() []Scenario {
	out := make([]Scenario, len(f.Scenarios))
	for i := range f.Scenarios {
		out[i] = f.Scenarios[i].ToScenario()
	}
	return out
}

// #endregion fixture-loader
