// Package config loads the tunables from spec.md §6 from a YAML file,
// following the teacher's preference for gopkg.in/yaml.v3 (already an
// indirect dependency via testify) over hand-rolled flag parsing.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// OpponentModel selects how Target Search replies to a candidate move.
type OpponentModel string

const (
	OpponentBest       OpponentModel = "best"
	OpponentTopN       OpponentModel = "topN"
	OpponentStochastic OpponentModel = "stochastic"
)

// TargetSearchPolicy is the Target Search policy bundle from spec.md §4.8.
// Clamp enforces the documented bounds in place and returns one note per
// field it had to adjust, e.g. "beam_width clamped to maximum" (for the
// PolicyClamp assumption, §7).
type TargetSearchPolicy struct {
	MaxDepth           int           `yaml:"max_depth"`
	BeamWidth          int           `yaml:"beam_width"`
	BranchingLimit     int           `yaml:"branching_limit"`
	EngineDepthPropose int           `yaml:"engine_depth_propose"`
	EngineDepthReply   int           `yaml:"engine_depth_reply"`
	OpponentModel      OpponentModel `yaml:"opponent_model"`
	TopKWitnesses      int           `yaml:"top_k_witnesses"`
}

func clampInt(v *int, lo, hi int, name string, out *[]string) {
	if *v < lo {
		*v = lo
		*out = append(*out, name+" clamped to minimum")
	} else if *v > hi {
		*v = hi
		*out = append(*out, name+" clamped to maximum")
	}
}

// Clamp enforces spec.md §4.8's policy bounds and reports which fields moved.
func (p *TargetSearchPolicy) Clamp() []string {
	var notes []string
	clampInt(&p.MaxDepth, 0, 24, "max_depth", &notes)
	clampInt(&p.BeamWidth, 1, 32, "beam_width", &notes)
	clampInt(&p.BranchingLimit, 1, 24, "branching_limit", &notes)
	clampInt(&p.EngineDepthPropose, 1, 6, "engine_depth_propose", &notes)
	clampInt(&p.EngineDepthReply, 1, 16, "engine_depth_reply", &notes)
	clampInt(&p.TopKWitnesses, 1, 10, "top_k_witnesses", &notes)
	if p.OpponentModel == "" {
		p.OpponentModel = OpponentBest
	}
	return notes
}

// Config holds every tunable named in spec.md §6.
type Config struct {
	DepthDeep         int                 `yaml:"depth_deep"`
	DepthShallow      int                 `yaml:"depth_shallow"`
	EvidencePliesBase int                 `yaml:"evidence_plies_base"`
	EvidencePliesMax  int                 `yaml:"evidence_plies_max"`
	BranchingLimit    int                 `yaml:"branching_limit"` // 0 = unbounded
	BranchDepthLimit  int                 `yaml:"branch_depth_limit"`
	PVMaxPlies        int                 `yaml:"pv_max_plies"`
	PGNMaxChars       int                 `yaml:"pgn_max_chars"` // 0 = unbounded
	LeafCacheSize     int                 `yaml:"leaf_cache_size"`
	ResultCacheSize   int                 `yaml:"result_cache_size"`
	ThreatSignificanceCP int              `yaml:"threat_significance_cp"`
	CriticalGapCP     int                 `yaml:"critical_gap_cp"`
	NodeLimit         int                 `yaml:"node_limit"`
	TargetSearch      TargetSearchPolicy  `yaml:"target_search"`
}

// Default returns the configuration defaults from spec.md §6.
func Default() Config {
	return Config{
		DepthDeep:            16,
		DepthShallow:         2,
		EvidencePliesBase:    4,
		EvidencePliesMax:     8,
		BranchingLimit:       0,
		BranchDepthLimit:     5,
		PVMaxPlies:           32,
		PGNMaxChars:          0,
		LeafCacheSize:        1024,
		ResultCacheSize:      512,
		ThreatSignificanceCP: 60,
		CriticalGapCP:        50,
		NodeLimit:            5000,
		TargetSearch: TargetSearchPolicy{
			MaxDepth:           12,
			BeamWidth:          4,
			BranchingLimit:     8,
			EngineDepthPropose: 4,
			EngineDepthReply:   10,
			OpponentModel:      OpponentBest,
			TopKWitnesses:      3,
		},
	}
}

// Load reads a YAML config file, falling back to Default() for any field
// the file omits and for the file itself when it does not exist.
func Load(path string) (Config, []string, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil, nil
	}
	if err != nil {
		return cfg, nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, nil, err
	}
	notes := cfg.TargetSearch.Clamp()
	return cfg, notes, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
