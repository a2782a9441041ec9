package knowledge

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/normalize"
	"gopkg.in/yaml.v3"
)

//go:embed default_seed.yaml
var defaultSeed []byte

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	Name             string  `yaml:"name"`
	Category         string  `yaml:"category"`
	StorageAdvice    *string `yaml:"storage,omitempty"`
	ShelfLifeDaysMin *int    `yaml:"shelf_life_days_min,omitempty"`
	ShelfLifeDaysMax *int    `yaml:"shelf_life_days_max,omitempty"`
}

// LoadSeed reads seed records from YAML. Names are normalized and every record
// carries SourceSeed. All invalid items are reported together.
func LoadSeed(r io.Reader) ([]core.KnowledgeRecord, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	records := make([]core.KnowledgeRecord, 0, len(file.Items))
	var errs []error
	for i, item := range file.Items {
		rec := core.KnowledgeRecord{
			Name:             normalize.Normalize(item.Name),
			StorageAdvice:    item.StorageAdvice,
			ShelfLifeDaysMin: item.ShelfLifeDaysMin,
			ShelfLifeDaysMax: item.ShelfLifeDaysMax,
			Source:           core.SourceSeed,
		}
		cat, err := core.ParseCategory(item.Category)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d (%q): %w: %q", i, item.Name, err, item.Category))
			continue
		}
		rec.Category = cat
		if err := core.ValidateKnowledgeRecord(&rec); err != nil {
			errs = append(errs, fmt.Errorf("item %d (%q): %w", i, item.Name, err))
			continue
		}
		records = append(records, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

// DefaultSeed returns the bundled seed records.
func DefaultSeed() ([]core.KnowledgeRecord, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// Seed writes records with SourceSeed. Unless overwrite is set, names that
// already have a record are skipped. It returns how many records were written.
func (s *Store) Seed(ctx context.Context, records []core.KnowledgeRecord, overwrite bool) (int, error) {
	written := 0
	var errs []error
	for _, record := range records {
		rec := record.Clone()
		rec.Name = normalize.Normalize(rec.Name)
		rec.Category = rec.Category.Canonical()
		rec.Source = core.SourceSeed
		if err := core.ValidateKnowledgeRecord(rec); err != nil {
			errs = append(errs, err)
			continue
		}

		ok, err := s.seedOne(ctx, rec, overwrite)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			written++
		}
	}
	s.logger.Info("seeded knowledge", "written", written, "total", len(records), "overwrite", overwrite)
	return written, errors.Join(errs...)
}

func (s *Store) seedOne(ctx context.Context, rec *core.KnowledgeRecord, overwrite bool) (bool, error) {
	mu := s.lockFor(rec.Name)
	mu.Lock()
	defer mu.Unlock()

	if !overwrite {
		existing, err := s.Get(ctx, rec.Name)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}
	}
	if _, err := s.put(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}
