package core

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sliink/formatbridge/internal/codec"
	"github.com/sliink/formatbridge/internal/model"
)

// Exporter writes on-demand snapshots of the transaction store to the
// exports directory as export-<epoch-millis>.<ext>.
type Exporter struct {
	store  *TransactionStore
	dir    string
	logger zerolog.Logger

	// now is swappable so file names are deterministic in tests.
	now func() time.Time
}

// NewExporter creates an exporter for store writing into dir.
func NewExporter(store *TransactionStore, dir string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		dir:    dir,
		logger: logger.With().Str("component", "exporter").Logger(),
		now:    time.Now,
	}
}

// Export validates the requested format name, serializes the current store
// contents, and writes the export file. It returns the file name and the
// number of exported records. An unsupported format fails with a FormatError
// before anything is written.
func (e *Exporter) Export(formatName string) (string, int, error) {
	format, err := model.ParseFormat(formatName)
	if err != nil {
		return "", 0, err
	}

	rs := e.store.Records()
	content, err := codec.Serialize(rs, format)
	if err != nil {
		return "", 0, err
	}

	name := "export-" + strconv.FormatInt(e.now().UnixMilli(), 10) + "." + format.Ext()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", 0, err
	}

	e.logger.Info().Str("file", name).Int("records", len(rs)).Msg("export written")
	return name, len(rs), nil
}
