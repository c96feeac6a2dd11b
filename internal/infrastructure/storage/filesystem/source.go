// Package filesystem serves reference tables from a local directory laid out
// as "{medium}_{endpoint}_train.{format}" and watches it for edits.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Source reads reference tables from Dir.  Every Load re-reads the file.
type Source struct {
	dir    string
	format reference.Format
	logger logging.Logger
}

var (
	_ reference.Source        = (*Source)(nil)
	_ reference.HealthChecker = (*Source)(nil)
)

// NewSource creates a Source.  An empty dir means the working directory and
// an empty format means xlsx.
func NewSource(dir string, format reference.Format, log logging.Logger) *Source {
	if dir == "" {
		dir = "."
	}
	if format == "" {
		format = reference.FormatXLSX
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Source{dir: dir, format: format, logger: log.Named("fs_source")}
}

// Dir returns the directory tables are read from.
func (s *Source) Dir() string { return s.dir }

// Path returns the file path of the (medium, endpoint) table.
func (s *Source) Path(medium exposure.Medium, endpoint exposure.Endpoint) string {
	return filepath.Join(s.dir, reference.FileName(medium, endpoint, s.format))
}

// TableFor maps a file name back to its (medium, endpoint).
func (s *Source) TableFor(name string) (exposure.Medium, exposure.Endpoint, bool) {
	base := filepath.Base(name)
	for _, m := range exposure.AllMedia() {
		for _, e := range exposure.AllEndpoints() {
			if base == reference.FileName(m, e, s.format) {
				return m, e, true
			}
		}
	}
	return "", "", false
}

// Load implements reference.Source.
func (s *Source) Load(_ context.Context, medium exposure.Medium, endpoint exposure.Endpoint) (*reference.Table, error) {
	path := s.Path(medium, endpoint)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, reference.Missing(medium, endpoint, path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeReferenceDataInvalid, "failed to open reference table").WithDetail(path)
	}
	defer f.Close()

	table, err := reference.Decode(f, s.format, medium, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to parse reference table").WithDetail(path)
	}
	s.logger.Debug("reference table loaded",
		logging.String("path", path),
		logging.Int("rows", table.NumRows()),
		logging.Int("features", table.NumFeatures()))
	return table, nil
}

// Check implements reference.HealthChecker: the directory must exist.
func (s *Source) Check(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "reference directory unavailable").WithDetail(s.dir)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeServiceUnavailable, fmt.Sprintf("%s is not a directory", s.dir))
	}
	return nil
}

//Personal.AI order the ending
