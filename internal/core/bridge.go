package core

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/sliink/formatbridge/internal/model"
)

// Submitter accepts one record for storage as a transaction. The direct
// implementation wraps the in-process store; internal/api provides one that
// posts to a remote transaction endpoint.
type Submitter interface {
	Submit(rec *model.Record) (model.Transaction, error)
}

// DirectSubmitter submits straight into a TransactionStore. It never fails.
type DirectSubmitter struct {
	Store *TransactionStore
}

func (d DirectSubmitter) Submit(rec *model.Record) (model.Transaction, error) {
	return d.Store.Submit(rec), nil
}

// Bridge is the file-to-API variant of the pipeline: it parses a dropped
// file and submits one transaction per record instead of writing converted
// files. A record that fails to submit is logged and skipped; the rest of
// the file is still attempted.
type Bridge struct {
	submitter Submitter
	logger    zerolog.Logger
}

// NewBridge creates a bridge delivering records through submitter.
func NewBridge(submitter Submitter, logger zerolog.Logger) *Bridge {
	return &Bridge{
		submitter: submitter,
		logger:    logger.With().Str("component", "bridge").Logger(),
	}
}

// OnFileArrival handles one stabilized file from the watcher.
func (b *Bridge) OnFileArrival(path string) {
	format, ok := model.FormatFromPath(path)
	if !ok {
		b.logger.Debug().Str("file", path).Msg("ignoring file with unrecognized extension")
		return
	}

	rs, err := parseFile(path, format)
	if err != nil {
		if errors.Is(err, model.ErrEmptyInput) {
			b.logger.Warn().Str("file", path).Msg("no records parsed, skipping")
		} else {
			b.logger.Error().Err(err).Str("file", path).Msg("failed to read or parse file")
		}
		return
	}

	submitted := 0
	for i, rec := range rs {
		txn, err := b.submitter.Submit(rec)
		if err != nil {
			b.logger.Error().Err(err).Str("file", path).Int("record", i).Msg("delivery failed")
			continue
		}
		submitted++
		b.logger.Debug().Int64("id", txn.ID).Int("record", i).Msg("record submitted")
	}

	b.logger.Info().Str("file", path).Int("submitted", submitted).Int("total", len(rs)).Msg("bridge file processed")
}
