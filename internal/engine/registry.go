package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
	"github.com/Manu2954/MarketSummariser-2.0/internal/window"
)

// DefaultOperationsPath is where the CLI looks for the operations file
// when no --ops flag is given.
const DefaultOperationsPath = "operations.yml"

// OperationSpec is one named operation definition from the operations
// file. Empty fields inherit from the file's defaults map before
// validation.
type OperationSpec struct {
	Name              string `yaml:"name"`
	Type              string `yaml:"type"`
	Symbol            string `yaml:"symbol"`
	Interval          string `yaml:"interval"`
	Lookback          string `yaml:"lookback"`
	StartTime         string `yaml:"start_time"`
	EndTime           string `yaml:"end_time"`
	TimeInputTimezone string `yaml:"time_input_timezone"`
	SliceOutputPath   string `yaml:"slice_output_path"`
}

// operationsFile is the on-disk shape: a defaults map applied per field
// plus the operation list.
type operationsFile struct {
	Defaults   map[string]string `yaml:"defaults"`
	Operations []OperationSpec   `yaml:"operations"`
}

// Outcome carries whichever result the operation type produces. Exactly
// one field is set on success.
type Outcome struct {
	Sync  *models.SyncResult
	Stats *models.VolumeStats
	Slice *models.SliceResult
}

// Registry holds the validated operation definitions and runs them by
// name through the engine.
type Registry struct {
	engine *Engine
	specs  map[string]OperationSpec
	names  []string
	logger *slog.Logger
}

// LoadRegistry reads and validates the operations file at path.
// Definition problems are reported here, before anything runs: every
// operation needs a name, names must be unique, and symbol and interval
// must be present after the defaults merge.
func LoadRegistry(path string, eng *Engine) (*Registry, error) {
	return LoadRegistryWithLogger(path, eng, slog.Default().With("component", "registry"))
}

// LoadRegistryWithLogger is LoadRegistry with an explicit logger.
func LoadRegistryWithLogger(path string, eng *Engine, logger *slog.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
			fmt.Sprintf("cannot read operations file %s", path))
	}

	var file operationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
			fmt.Sprintf("cannot parse operations file %s", path))
	}

	r := &Registry{
		engine: eng,
		specs:  make(map[string]OperationSpec, len(file.Operations)),
		logger: logger,
	}
	for i, spec := range file.Operations {
		spec.applyDefaults(file.Defaults)
		if spec.Name == "" {
			return nil, apperrors.New(apperrors.ErrorTypeInvalidOperation,
				fmt.Sprintf("operation %d in %s has no name", i+1, path))
		}
		if _, exists := r.specs[spec.Name]; exists {
			return nil, apperrors.NewInvalidOperation(spec.Name, "operation name is defined twice")
		}
		if spec.Symbol == "" {
			return nil, apperrors.NewInvalidOperation(spec.Name, "symbol is required")
		}
		if spec.Interval == "" {
			return nil, apperrors.NewInvalidOperation(spec.Name, "interval is required")
		}
		r.specs[spec.Name] = spec
		r.names = append(r.names, spec.Name)
	}

	logger.Debug("loaded operations file", "path", path, "operations", len(r.names))
	return r, nil
}

// applyDefaults fills empty fields from the defaults map, keyed by the
// YAML field names. Name is never defaulted.
func (s *OperationSpec) applyDefaults(defaults map[string]string) {
	fields := []struct {
		key    string
		target *string
	}{
		{"type", &s.Type},
		{"symbol", &s.Symbol},
		{"interval", &s.Interval},
		{"lookback", &s.Lookback},
		{"start_time", &s.StartTime},
		{"end_time", &s.EndTime},
		{"time_input_timezone", &s.TimeInputTimezone},
		{"slice_output_path", &s.SliceOutputPath},
	}
	for _, f := range fields {
		if *f.target == "" {
			*f.target = defaults[f.key]
		}
	}
}

// Names returns the operation names in file order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Lookup returns the validated definition for name.
func (r *Registry) Lookup(name string) (OperationSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Run executes one named operation through the engine and returns its
// result. An unknown name or operation type fails before any I/O.
func (r *Registry) Run(ctx context.Context, name string) (*Outcome, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, apperrors.NewInvalidOperation(name, "operation is not defined").
			With("defined", strings.Join(r.names, ", "))
	}

	opType := models.OperationType(spec.Type)
	if !models.ValidOperationType(opType) {
		return nil, apperrors.NewInvalidOperation(name,
			fmt.Sprintf("unknown operation type %q", spec.Type))
	}

	win, err := r.engine.ResolveWindow(window.Request{
		Start:         spec.StartTime,
		End:           spec.EndTime,
		Lookback:      spec.Lookback,
		InputTimezone: spec.TimeInputTimezone,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("running operation",
		"operation", name,
		"type", spec.Type,
		"symbol", spec.Symbol,
		"interval", spec.Interval,
	)

	switch opType {
	case models.OperationTypeFetch:
		result, err := r.engine.Sync(ctx, spec.Symbol, spec.Interval, win, false)
		if err != nil {
			return nil, err
		}
		return &Outcome{Sync: result}, nil
	case models.OperationTypeVolumeStats:
		result, err := r.engine.Stats(ctx, spec.Symbol, spec.Interval, win)
		if err != nil {
			return nil, err
		}
		return &Outcome{Stats: result}, nil
	default:
		result, err := r.engine.Slice(ctx, spec.Symbol, spec.Interval, win, spec.SliceOutputPath)
		if err != nil {
			return nil, err
		}
		return &Outcome{Slice: result}, nil
	}
}
