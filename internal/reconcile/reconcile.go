// Package reconcile runs multi-file import sessions. Files are processed
// in the order given; a file that fails to parse is recorded and skipped,
// never aborting the run for its siblings.
package reconcile

import (
	"errors"

	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

// Parser turns one source file into an ImportResult.
type Parser func(path string) (*models.ImportResult, error)

// Outcome is the per-file record of a run. Exactly one of Result and Err
// is set.
type Outcome struct {
	File   string
	Result *models.ImportResult
	Err    error
}

// Summary aggregates a run.
type Summary struct {
	Outcomes []Outcome

	Staged    int // files parsed successfully
	Failed    int // files that could not be parsed
	Documents int // documents staged across all files
	Warnings  int // warnings across all staged files
}

// Engine runs import sessions.
type Engine struct {
	logger logging.Logger
}

// NewEngine creates an import engine.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Engine{logger: logger}
}

// Run parses every file in order with the given parser. Parse failures are
// scoped to their file: the outcome records the error and the run
// continues.
func (e *Engine) Run(files []string, parse Parser) Summary {
	summary := Summary{}

	for _, file := range files {
		result, err := parse(file)
		if err != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, Outcome{File: file, Err: err})

			var parseErr *parsererror.ParseError
			if errors.As(err, &parseErr) {
				e.logger.WithError(err).Warn("File failed to parse, skipping",
					logging.Field{Key: logging.FieldFile, Value: file})
			} else {
				e.logger.WithError(err).Warn("File rejected, skipping",
					logging.Field{Key: logging.FieldFile, Value: file})
			}
			continue
		}

		summary.Staged++
		summary.Documents += len(result.Documents)
		summary.Warnings += len(result.Warnings)
		summary.Outcomes = append(summary.Outcomes, Outcome{File: file, Result: result})

		e.logger.Info("File staged",
			logging.Field{Key: logging.FieldFile, Value: file},
			logging.Field{Key: logging.FieldCount, Value: len(result.Documents)})
	}

	e.logger.Info("Import run finished",
		logging.Field{Key: "staged", Value: summary.Staged},
		logging.Field{Key: "failed", Value: summary.Failed},
		logging.Field{Key: logging.FieldCount, Value: summary.Documents})
	return summary
}

// RunMixed parses each file with the parser selected for it, so one run
// can mix sources.
func (e *Engine) RunMixed(files []string, pick func(path string) Parser) Summary {
	summary := Summary{}
	for _, file := range files {
		parse := pick(file)
		if parse == nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, Outcome{
				File: file,
				Err: &parsererror.InvalidFormatError{
					FilePath: file,
					Msg:      "no parser accepts this file",
				},
			})
			continue
		}
		one := e.Run([]string{file}, parse)
		summary.Outcomes = append(summary.Outcomes, one.Outcomes...)
		summary.Staged += one.Staged
		summary.Failed += one.Failed
		summary.Documents += one.Documents
		summary.Warnings += one.Warnings
	}
	return summary
}
