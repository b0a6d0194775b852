package telemetry

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/simulation"
	"github.com/pthm-cable/beast/world"
)

func init() {
	config.MustInit("")
}

// blob is an evolvable body scored by the sum of its genes.
type blob struct {
	*world.Object
	genes []float64
	rec   evolve.Record
}

func (b *blob) Genotype() []float64    { return b.genes }
func (b *blob) Record() *evolve.Record { return &b.rec }

func (b *blob) SetGenotype(g []float64) error {
	if len(g) != len(b.genes) {
		return evolve.ErrGenotypeLength
	}
	copy(b.genes, g)
	return nil
}

func (b *blob) Fitness() float64 {
	f := 0.0
	for _, v := range b.genes {
		f += v
	}
	return f
}

func newPopulation(rng *rand.Rand, size int) *evolve.Population[*blob] {
	spawn := func() *blob {
		return &blob{Object: world.NewObject(), genes: []float64{rng.Float64(), rng.Float64(), rng.Float64()}}
	}
	return evolve.NewPopulation(size, spawn, evolve.New(evolve.DefaultOptions(), rng))
}

func newQuietSim(gens int) *simulation.Simulation {
	s := simulation.New("test", world.New(500, 400, rand.New(rand.NewSource(1))))
	s.SetLogging(config.LoggingConfig{})
	s.SetGenerations(gens)
	s.SetTimeSteps(2)
	return s
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	rng := rand.New(rand.NewSource(3))
	pop := newPopulation(rng, 6)
	s := newQuietSim(2)
	s.Add("blobs", pop)
	if err := s.Run(t.Context()); err != nil {
		t.Fatal(err)
	}

	pops := []NamedPopulation{{Name: "blobs", Population: pop}}
	snapshot := CaptureSnapshot(s, 42, pops)
	if snapshot.WorldWidth != 500 || snapshot.WorldHeight != 400 {
		t.Errorf("world size = %vx%v", snapshot.WorldWidth, snapshot.WorldHeight)
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Seed != 42 || loaded.Name != "test" {
		t.Errorf("header = %d/%q, want 42/test", loaded.Seed, loaded.Name)
	}
	if len(loaded.Populations) != 1 {
		t.Fatalf("got %d populations, want 1", len(loaded.Populations))
	}
	st := loaded.Populations[0]
	if len(st.Genotypes) != 6 || len(st.History) != 2 {
		t.Errorf("population state has %d genotypes and %d generations, want 6 and 2",
			len(st.Genotypes), len(st.History))
	}

	// Restore into a fresh population.
	fresh := newPopulation(rand.New(rand.NewSource(9)), 2)
	if err := loaded.Restore([]NamedPopulation{{Name: "blobs", Population: fresh}}); err != nil {
		t.Fatal(err)
	}
	if fresh.Len() != 6 {
		t.Fatalf("restored %d members, want 6", fresh.Len())
	}
	for i, m := range fresh.Members() {
		if !slices.Equal(m.Genotype(), st.Genotypes[i]) {
			t.Errorf("member %d genotype mismatch", i)
		}
	}
	if fresh.GA().Generations() != 2 {
		t.Errorf("restored GA has %d generations, want 2", fresh.GA().Generations())
	}
	_, wantFit, _ := pop.GA().BestEver()
	if _, fit, ok := fresh.GA().BestEver(); !ok || fit != wantFit {
		t.Errorf("best ever = %v, %v, want %v", fit, ok, wantFit)
	}
}

func TestSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	data, _ := json.Marshal(Snapshot{Version: SnapshotVersion + 1})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); !errors.Is(err, ErrSnapshotVersion) {
		t.Errorf("error = %v, want ErrSnapshotVersion", err)
	}
}

func TestSnapshotRestoreRejectsBadGenotypes(t *testing.T) {
	snap := &Snapshot{
		Version: SnapshotVersion,
		Populations: []PopulationState{
			{Name: "blobs", Genotypes: [][]float64{{1, 2}}},
		},
	}
	pop := newPopulation(rand.New(rand.NewSource(1)), 2)
	err := snap.Restore([]NamedPopulation{{Name: "blobs", Population: pop}})
	if !errors.Is(err, evolve.ErrGenotypeLength) {
		t.Errorf("error = %v, want ErrGenotypeLength", err)
	}
}
