package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

func fakeParser(t *testing.T) Parser {
	t.Helper()
	return func(path string) (*models.ImportResult, error) {
		if strings.Contains(path, "broken") {
			return nil, &parsererror.ParseError{
				Parser: "test", FileName: path, Reason: "malformed",
			}
		}
		return &models.ImportResult{
			Source:    models.SourceControlisy,
			FileName:  path,
			Documents: []models.ImportDocument{{DocumentNumber: "1"}, {DocumentNumber: "2"}},
			Warnings:  []string{"minor"},
		}, nil
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	engine := NewEngine(&logging.MockLogger{})

	files := []string{"a.xml", "broken.xml", "c.xml"}
	summary := engine.Run(files, fakeParser(t))

	assert.Equal(t, 2, summary.Staged)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 4, summary.Documents)
	assert.Equal(t, 2, summary.Warnings)
	require.Len(t, summary.Outcomes, 3)

	// order preserved, errors scoped to their file
	assert.Equal(t, "a.xml", summary.Outcomes[0].File)
	assert.NoError(t, summary.Outcomes[0].Err)
	assert.Error(t, summary.Outcomes[1].Err)
	assert.Nil(t, summary.Outcomes[1].Result)
	assert.NotNil(t, summary.Outcomes[2].Result)
}

func TestRunMixedSelectsParserPerFile(t *testing.T) {
	engine := NewEngine(&logging.MockLogger{})

	summary := engine.RunMixed([]string{"a.xml", "weird.bin"}, func(path string) Parser {
		if strings.HasSuffix(path, ".xml") {
			return fakeParser(t)
		}
		return nil
	})

	assert.Equal(t, 1, summary.Staged)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Outcomes, 2)
	assert.Error(t, summary.Outcomes[1].Err)
}
