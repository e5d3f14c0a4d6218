// Package seed loads events from a YAML file into the record store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

// File is the on-disk seed format.
type File struct {
	Events []v1.Event `yaml:"events"`
}

// EventCreator saves a new event. *records.Service implements it.
type EventCreator interface {
	CreateEvent(ctx context.Context, event *v1.Event) error
}

// Result summarizes one Apply run.
type Result struct {
	Created int
	Skipped int
}

// LoadFile decodes the seed file at path. Unknown keys are rejected.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var seed File
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Apply creates every event in seed. Events whose slug already exists are
// skipped so seeding can be re-run; any other error stops the run.
func Apply(ctx context.Context, creator EventCreator, seed *File) (Result, error) {
	var res Result
	for i := range seed.Events {
		evt := seed.Events[i]
		if err := creator.CreateEvent(ctx, &evt); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				slog.Info("[Seed] Event already present, skipping", "title", evt.Title, "slug", evt.Slug)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to seed event %d (%q): %w", i, evt.Title, err)
		}
		res.Created++
	}

	slog.Info("[Seed] Seeding complete", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}
