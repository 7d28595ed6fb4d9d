package labels

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mmcdole/labeldesk/internal/domain"
)

// StorageKey is the key holding the JSON array of requested tracking numbers.
// It matches the local-storage key of the web version so exported state stays readable.
const StorageKey = "requestedCdekLabels"

// Registry remembers tracking numbers whose labels were already obtained.
// It only grows, except for an explicit Clear.
type Registry struct {
	store  domain.KVStore
	logger *slog.Logger
}

// NewRegistry creates a registry over a key-value store
func NewRegistry(store domain.KVStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, logger: logger}
}

// List returns the requested tracking numbers in the order they were marked.
// A missing or unreadable value counts as "nothing requested yet".
func (r *Registry) List() []string {
	numbers, err := r.read()
	if err != nil {
		r.logger.Warn("failed to read requested labels", "error", err)
		return nil
	}
	return numbers
}

// read returns the stored numbers. A store failure is returned so writers
// never replace marks they could not see; a corrupt value reads as empty.
func (r *Registry) read() ([]string, error) {
	data, ok, err := r.store.Get(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}

	var numbers []string
	if err := json.Unmarshal(data, &numbers); err != nil {
		r.logger.Warn("ignoring corrupt requested labels", "error", err, "bytes", len(data))
		return nil, nil
	}
	return numbers, nil
}

// Load returns the requested tracking numbers as a set
func (r *Registry) Load() domain.TrackingSet {
	return domain.NewTrackingSet(r.List()...)
}

// MarkRequested adds numbers to the registry and returns the resulting set.
// Numbers already present and empty numbers are skipped; nothing is written
// when the set does not change.
func (r *Registry) MarkRequested(numbers []string) (domain.TrackingSet, error) {
	current, err := r.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read requested labels: %w", err)
	}
	set := domain.NewTrackingSet(current...)

	added := 0
	for _, n := range numbers {
		if n == "" || set.Contains(n) {
			continue
		}
		current = append(current, n)
		set[n] = struct{}{}
		added++
	}

	if added == 0 {
		return set, nil
	}

	data, err := json.Marshal(current)
	if err != nil {
		return set, fmt.Errorf("failed to encode requested labels: %w", err)
	}
	if err := r.store.Set(StorageKey, data); err != nil {
		return set, fmt.Errorf("failed to save requested labels: %w", err)
	}

	r.logger.Debug("marked labels as requested", "added", added, "total", len(current))
	return set, nil
}

// Clear forgets all requested labels
func (r *Registry) Clear() error {
	if err := r.store.Delete(StorageKey); err != nil {
		return fmt.Errorf("failed to clear requested labels: %w", err)
	}
	r.logger.Info("cleared requested labels")
	return nil
}
