package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/simulation"
	"github.com/pthm-cable/beast/world"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when loading a snapshot written by an
// incompatible version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Tracked is an evolving population whose state can be recorded and
// restored. evolve.Population satisfies it.
type Tracked interface {
	GA() *evolve.GA
	Genotypes() [][]float64
	LoadGenotypes(gs [][]float64) error
}

// Snapshot holds enough simulation state to resume evolution at a
// generation boundary.
type Snapshot struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Seed    int64  `json:"seed"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Position simulation.Position `json:"position"`

	Populations []PopulationState `json:"populations"`

	// Bodies are the arena poses when the snapshot was taken or, for
	// snapshots taken between generations, at the end of the last
	// assessment.
	Bodies []BodyState `json:"bodies,omitempty"`
}

// PopulationState holds one population's genomes and GA history.
type PopulationState struct {
	Name            string         `json:"name"`
	Genotypes       [][]float64    `json:"genotypes"`
	History         []evolve.Stats `json:"history"`
	BestEver        []float64      `json:"best_ever,omitempty"`
	BestEverFitness float64        `json:"best_ever_fitness"`
}

// BodyState is a body's pose when the snapshot was taken.
type BodyState struct {
	ID      uint32  `json:"id"`
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// NamedPopulation pairs a population with the name it is recorded under.
type NamedPopulation struct {
	Name       string
	Population Tracked
}

// CaptureSnapshot records the position of s and the state of pops.
func CaptureSnapshot(s *simulation.Simulation, seed int64, pops []NamedPopulation) *Snapshot {
	snap := &Snapshot{
		Version:  SnapshotVersion,
		Name:     s.Name(),
		Seed:     seed,
		Position: s.Position(),
	}
	if w := s.World(); w != nil {
		snap.WorldWidth, snap.WorldHeight = w.Width(), w.Height()
		snap.Bodies = CaptureBodies(w)
	}
	for _, np := range pops {
		ga := np.Population.GA()
		st := PopulationState{
			Name:      np.Name,
			Genotypes: np.Population.Genotypes(),
			History:   ga.History(),
		}
		if best, fit, ok := ga.BestEver(); ok {
			st.BestEver, st.BestEverFitness = best, fit
		}
		snap.Populations = append(snap.Populations, st)
	}
	return snap
}

// CaptureBodies records the pose of every live body in w.
func CaptureBodies(w *world.World) []BodyState {
	var bodies []BodyState
	w.Poses(func(p world.Pose) {
		if p.Dead {
			return
		}
		bodies = append(bodies, BodyState{
			ID:      p.ID,
			Kind:    p.Kind.String(),
			X:       p.X,
			Y:       p.Y,
			Heading: p.Heading,
		})
	})
	return bodies
}

// Restore loads each recorded population into the population of the same
// name in pops. Populations missing from either side are skipped.
func (snap *Snapshot) Restore(pops []NamedPopulation) error {
	byName := make(map[string]Tracked, len(pops))
	for _, np := range pops {
		byName[np.Name] = np.Population
	}
	for _, st := range snap.Populations {
		p, ok := byName[st.Name]
		if !ok {
			continue
		}
		if err := p.LoadGenotypes(st.Genotypes); err != nil {
			return fmt.Errorf("restore population %s: %w", st.Name, err)
		}
		p.GA().Restore(st.History, st.BestEver, st.BestEverFitness)
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_r%d_g%d.json", snapshot.Position.Run, snapshot.Position.Generation)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}

	return &snapshot, nil
}
