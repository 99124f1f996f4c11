package variation

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/termmatch/internal/normalize"
)

// SynonymStore holds mutable synonym clusters. Membership in any cluster
// pulls the cluster's other members into a term's VariationSet. Writes are
// additive only and go through a write lock; readers take a read lock.
type SynonymStore struct {
	mu      sync.RWMutex
	entropy *ulid.MonotonicEntropy

	// clusterID -> members (all normalized)
	clusters map[string][]string

	// member -> clusterID, for O(1) membership lookup
	index map[string]string

	path string
}

// NewSynonymStore creates an empty store not bound to any file.
func NewSynonymStore() *SynonymStore {
	return &SynonymStore{
		entropy:  ulid.Monotonic(rand.Reader, 0),
		clusters: make(map[string][]string),
		index:    make(map[string]string),
	}
}

// LoadSynonymStore reads a JSON file mapping cluster id -> members. A
// missing file is treated as an empty store.
func LoadSynonymStore(path string) (*SynonymStore, error) {
	s := NewSynonymStore()
	s.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("variation: read synonyms file: %w", err)
	}

	var clusters map[string][]string
	if err := json.Unmarshal(data, &clusters); err != nil {
		return nil, fmt.Errorf("variation: parse synonyms file: %w", err)
	}

	for id, members := range clusters {
		lowered := make([]string, 0, len(members))
		for _, m := range members {
			lowered = append(lowered, normalize.Normalize(m))
		}
		s.clusters[id] = lowered
		for _, m := range lowered {
			s.index[m] = id
		}
	}

	return s, nil
}

// Members returns the other members of term's cluster (lowercased), or nil
// if term belongs to no cluster.
func (s *SynonymStore) Members(term string) []string {
	term = normalize.Normalize(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.index[term]
	if !ok {
		return nil
	}

	members := s.clusters[id]
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m != term {
			out = append(out, m)
		}
	}
	return out
}

// Add merges term and synonyms into a single cluster, creating a new
// cluster id if none of them already belong to one, or merging into the
// first existing cluster found among them. It reports whether the
// in-memory mutation succeeded; callers wanting persistence call Flush
// afterward.
func (s *SynonymStore) Add(term string, synonyms []string) bool {
	term = normalize.Normalize(term)
	if term == "" {
		return false
	}

	members := make([]string, 0, len(synonyms)+1)
	members = append(members, term)
	for _, syn := range synonyms {
		syn = normalize.Normalize(syn)
		if syn != "" {
			members = append(members, syn)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Find every existing cluster id touched by the members, so a merge
	// that bridges two previously separate clusters folds both in rather
	// than leaving the other one stale.
	var touched []string
	seenCluster := make(map[string]struct{})
	for _, m := range members {
		if id, ok := s.index[m]; ok {
			if _, dup := seenCluster[id]; !dup {
				seenCluster[id] = struct{}{}
				touched = append(touched, id)
			}
		}
	}

	var clusterID string
	if len(touched) > 0 {
		clusterID = touched[0]
	} else {
		clusterID = ulid.MustNew(ulid.Now(), s.entropy).String()
	}

	seen := make(map[string]struct{})
	var merged []string
	addAll := func(ms []string) {
		for _, m := range ms {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				merged = append(merged, m)
			}
		}
	}
	for _, id := range touched {
		addAll(s.clusters[id])
	}
	addAll(members)

	for _, id := range touched {
		if id != clusterID {
			delete(s.clusters, id)
		}
	}
	s.clusters[clusterID] = merged
	for _, m := range merged {
		s.index[m] = clusterID
	}

	return true
}

// Flush atomically persists the store to its bound path. It is a no-op
// returning nil if the store was never bound to a file via
// LoadSynonymStore.
func (s *SynonymStore) Flush() error {
	s.mu.RLock()
	path := s.path
	snapshot := make(map[string][]string, len(s.clusters))
	for id, members := range s.clusters {
		snapshot[id] = append([]string(nil), members...)
	}
	s.mu.RUnlock()

	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("variation: marshal synonyms: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("variation: write synonyms temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("variation: rename synonyms file: %w", err)
	}
	return nil
}
