package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"sort"
)

// HallEntry is an archived genome with the fitness it earned.
type HallEntry struct {
	Genome     []float64 `json:"genome"`
	Fitness    float64   `json:"fitness"`
	Run        int       `json:"run"`
	Generation int       `json:"generation"`
}

// HallOfFame keeps the best genomes seen by each population, for seeding
// later runs and for inspection after a simulation.
// Halls are keyed by population name.
type HallOfFame struct {
	halls   map[string][]HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a hall of fame holding up to maxSize genomes per
// population. A nil rng uses the math/rand source.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &HallOfFame{
		halls:   make(map[string][]HallEntry),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Consider offers a genome to a population's hall.
// Returns true if it was added. The genome is copied.
func (hof *HallOfFame) Consider(population string, genome []float64, fitness float64, run, generation int) bool {
	if len(genome) == 0 {
		return false
	}
	entry := HallEntry{
		Genome:     slices.Clone(genome),
		Fitness:    fitness,
		Run:        run,
		Generation: generation,
	}
	hall, added := hof.insertEntry(hof.halls[population], entry)
	hof.halls[population] = hall
	return added
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall, false
	}

	hall = slices.Insert(hall, idx, entry)
	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall, true
}

// Sample selects a genome from a population's hall using tournament
// selection. Returns nil if the hall is empty.
func (hof *HallOfFame) Sample(population string) []float64 {
	hall := hof.halls[population]
	if len(hall) == 0 {
		return nil
	}

	// Tournament selection with k=3
	const tournamentSize = 3
	best := -1
	for i := 0; i < tournamentSize; i++ {
		idx := hof.rng.Intn(len(hall))
		if best < 0 || hall[idx].Fitness > hall[best].Fitness {
			best = idx
		}
	}
	return slices.Clone(hall[best].Genome)
}

// Best returns the fittest entry of a population's hall.
func (hof *HallOfFame) Best(population string) (HallEntry, bool) {
	hall := hof.halls[population]
	if len(hall) == 0 {
		return HallEntry{}, false
	}
	return hall[0], true
}

// Entries returns a population's hall, best first.
func (hof *HallOfFame) Entries(population string) []HallEntry { return hof.halls[population] }

// Size returns the number of entries for a population.
func (hof *HallOfFame) Size(population string) int { return len(hof.halls[population]) }

// MarshalJSON encodes every hall keyed by population name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.Marshal(hof.halls)
}

// UnmarshalJSON replaces the halls, trimming each to the capacity.
func (hof *HallOfFame) UnmarshalJSON(data []byte) error {
	var halls map[string][]HallEntry
	if err := json.Unmarshal(data, &halls); err != nil {
		return err
	}
	if hof.maxSize < 1 {
		hof.maxSize = 1
	}
	for name, hall := range halls {
		sort.SliceStable(hall, func(i, j int) bool { return hall[i].Fitness > hall[j].Fitness })
		if len(hall) > hof.maxSize {
			halls[name] = hall[:hof.maxSize]
		}
	}
	hof.halls = halls
	return nil
}

// LoadHallOfFame reads a hall of fame written by OutputManager.WriteHallOfFame.
func LoadHallOfFame(path string, maxSize int, rng *rand.Rand) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hall of fame: %w", err)
	}
	hof := NewHallOfFame(maxSize, rng)
	if err := json.Unmarshal(data, hof); err != nil {
		return nil, fmt.Errorf("unmarshal hall of fame: %w", err)
	}
	return hof, nil
}
