package pipeline

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hazyhaar/ruea-filter/pkg/region"
	"github.com/hazyhaar/ruea-filter/pkg/schema"
	"github.com/hazyhaar/ruea-filter/pkg/sniff"
)

// ErrNoInputFiles is returned by Run when discovery finds nothing to process.
var ErrNoInputFiles = errors.New("no input files found")

// ErrOutputCollision marks a file whose output name was already written by
// another input file in the same run.
var ErrOutputCollision = errors.New("output name collision")

// AuditFile is the name of the per-run audit log in the output directory.
const AuditFile = "resumen_filtrado_region.csv"

// ManifestFile is the name of the run manifest in the output directory.
const ManifestFile = "run.yaml"

// Options configures a Run.
type Options struct {
	InputDir  string
	OutputDir string
	// Region is the target region as the user wrote it.
	Region string
	// Regions resolves region aliases. Nil means region.DefaultTable.
	Regions *region.Table
	// Families restricts discovery. Nil means every registered family.
	Families []*schema.Family
	// OutPrefix is prepended to per-file output names.
	OutPrefix string
	// Diagnostics override encoding and delimiter detection per file.
	Diagnostics sniff.Diagnostics
	// Workers bounds concurrent file processing. Values below 1 mean 1.
	Workers int
	// MaxSheetRows caps spreadsheet outputs, header included. Zero means the
	// workbook format limit.
	MaxSheetRows int
	Logger       *zap.Logger
	// Now stamps the run manifest. Nil means time.Now.
	Now func() time.Time
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Regions == nil {
		out.Regions = region.DefaultTable()
	}
	if out.Families == nil {
		out.Families = schema.All()
	}
	if out.Workers < 1 {
		out.Workers = 1
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return out
}
