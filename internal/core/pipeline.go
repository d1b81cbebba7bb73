package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sliink/formatbridge/internal/codec"
	"github.com/sliink/formatbridge/internal/model"
)

// TopicFileTransforms carries one notification per completed file transform.
const TopicFileTransforms = "file-transforms"

// TransformPipeline converts a dropped file into every other supported
// format. Failures never escape OnFileArrival: a bad file is logged and
// abandoned so the watcher can keep feeding subsequent files.
type TransformPipeline struct {
	outputDir string
	bus       *EventBus
	logger    zerolog.Logger
}

// NewTransformPipeline creates a pipeline writing converted files to
// outputDir and publishing notifications on bus.
func NewTransformPipeline(outputDir string, bus *EventBus, logger zerolog.Logger) *TransformPipeline {
	return &TransformPipeline{
		outputDir: outputDir,
		bus:       bus,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// OnFileArrival handles one stabilized file from the watcher. Unrecognized
// extensions are ignored. Parse failures and empty inputs are logged and
// produce no side effects. Each target format is written independently, so
// one failed write does not block the others.
func (p *TransformPipeline) OnFileArrival(path string) {
	format, ok := model.FormatFromPath(path)
	if !ok {
		p.logger.Debug().Str("file", path).Msg("ignoring file with unrecognized extension")
		return
	}

	rs, err := parseFile(path, format)
	if err != nil {
		if errors.Is(err, model.ErrEmptyInput) {
			p.logger.Warn().Str("file", path).Msg("no records parsed, skipping")
		} else {
			p.logger.Error().Err(err).Str("file", path).Msg("failed to read or parse file")
		}
		return
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	written := 0
	for _, target := range model.Formats() {
		if target == format {
			continue
		}
		content, err := codec.Serialize(rs, target)
		if err != nil {
			p.logger.Error().Err(err).Str("file", path).Str("format", string(target)).Msg("serialization failed")
			continue
		}
		dest := filepath.Join(p.outputDir, base+"."+target.Ext())
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			p.logger.Error().Err(err).Str("dest", dest).Msg("write failed")
			continue
		}
		written++
		p.logger.Info().Str("source", filepath.Base(path)).Str("dest", filepath.Base(dest)).Int("records", len(rs)).Msg("converted file written")
	}

	p.bus.Publish(TopicFileTransforms, map[string]any{
		"file":        filepath.Base(path),
		"recordCount": len(rs),
		"converted":   written,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// parseFile reads and parses one file, folding the empty result into
// ErrEmptyInput so callers handle it uniformly.
func parseFile(path string, format model.Format) (model.RecordSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := codec.Parse(content, format)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, model.ErrEmptyInput
	}
	return rs, nil
}
