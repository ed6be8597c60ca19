package scene

import (
	"encoding/json"
	"sync"

	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/profile"
)

// Builder memoizes Build on the structural identity of its inputs. Render
// models are cheap to recompute but callers like the HTTP render endpoint
// hit the same (profile, config) pair repeatedly.
type Builder struct {
	mu    sync.Mutex
	key   string
	model *Model
}

// Model returns the render model for the inputs, reusing the previous one
// when both inputs are structurally unchanged.
func (b *Builder) Model(p *profile.ClimbProfile, cfg config.Config) *Model {
	key := memoKey(p, cfg)

	b.mu.Lock()
	defer b.mu.Unlock()
	if key != "" && key == b.key && b.model != nil {
		return b.model
	}

	m := Build(p, cfg)
	b.key, b.model = key, m
	return m
}

// memoKey serializes both inputs. An empty key (marshal failure) disables
// memoization for that call rather than failing the render.
func memoKey(p *profile.ClimbProfile, cfg config.Config) string {
	pj, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	cj, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return string(pj) + "|" + string(cj)
}
