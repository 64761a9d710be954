package loader

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	apperrors "exopanel/internal/errors"
	"exopanel/pkg/contracts/domain"
)

// eventsFile mirrors the on-disk event definition document. Dates are
// kept as strings so the layout can be validated explicitly instead of
// trusting the YAML timestamp resolver.
type eventsFile struct {
	Events []eventEntry `yaml:"events"`
}

type eventEntry struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LoadEvents reads the YAML event definition file at path. Start and
// end are optional per entry; a missing file is fatal, an empty or
// absent events list yields an empty slice.
func LoadEvents(path string) ([]domain.EventDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingSource("load_events", path)
		}
		return nil, apperrors.NewExecution("load_events", err)
	}

	var doc eventsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewExecution("load_events",
			fmt.Errorf("failed to parse event file %s: %w", path, err))
	}

	defs := make([]domain.EventDefinition, 0, len(doc.Events))
	for i, entry := range doc.Events {
		if entry.Name == "" {
			return nil, apperrors.NewExecution("load_events",
				fmt.Errorf("event %d in %s has no name", i, path))
		}
		def := domain.EventDefinition{Name: entry.Name}
		def.Start, err = parseOptionalDate(entry.Start)
		if err != nil {
			return nil, apperrors.NewExecution("load_events",
				fmt.Errorf("event %q has invalid start date: %w", entry.Name, err))
		}
		def.End, err = parseOptionalDate(entry.End)
		if err != nil {
			return nil, apperrors.NewExecution("load_events",
				fmt.Errorf("event %q has invalid end date: %w", entry.Name, err))
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// parseOptionalDate parses a YYYY-MM-DD string, mapping the empty
// string to nil.
func parseOptionalDate(cell string) (*time.Time, error) {
	if cell == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, cell)
	if err != nil {
		return nil, err
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &t, nil
}
