// Package store persists the local mapping data: account-code overrides
// applied to imported documents and the counterpart registry used when
// import contractors are matched against known contragents.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
)

var log logging.Logger = logging.NewLogrusAdapter("info", "text")

// SetLogger replaces the package logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// MappingStore manages the account mapping and counterpart files.
type MappingStore struct {
	AccountsFile     string
	CounterpartsFile string
}

// NewMappingStore creates a store over the two mapping files. Empty names
// fall back to the defaults.
func NewMappingStore(accountsFile, counterpartsFile string) *MappingStore {
	if accountsFile == "" {
		accountsFile = "account-mappings.yaml"
	}
	if counterpartsFile == "" {
		counterpartsFile = "counterparts.yaml"
	}
	return &MappingStore{
		AccountsFile:     accountsFile,
		CounterpartsFile: counterpartsFile,
	}
}

// FindConfigFile looks for a mapping file in the standard locations:
// as given, ./config/, then ~/.config/kontir/.
func (s *MappingStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "kontir", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// accountMappingsFile is the on-disk shape of the account override file.
type accountMappingsFile struct {
	Mappings map[string]string `yaml:"mappings"`
}

// LoadAccountMappings reads the source-code to chart-code overrides. A
// missing file is not an error: imports then keep every source code as-is.
func (s *MappingStore) LoadAccountMappings() (map[string]string, error) {
	path, err := s.FindConfigFile(s.AccountsFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Account mapping file not found, using identity mapping",
				logging.Field{Key: logging.FieldFile, Value: s.AccountsFile})
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error resolving account mappings: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading account mappings: %w", err)
	}

	var file accountMappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing account mappings: %w", err)
	}
	if file.Mappings == nil {
		file.Mappings = map[string]string{}
	}
	return file.Mappings, nil
}

// SaveAccountMappings writes the override map back, keys sorted.
func (s *MappingStore) SaveAccountMappings(mappings map[string]string) error {
	data, err := yaml.Marshal(accountMappingsFile{Mappings: mappings})
	if err != nil {
		return fmt.Errorf("error serializing account mappings: %w", err)
	}
	if err := os.WriteFile(s.AccountsFile, data, 0o644); err != nil {
		return fmt.Errorf("error writing account mappings: %w", err)
	}
	log.Debug("Account mappings saved",
		logging.Field{Key: logging.FieldFile, Value: s.AccountsFile},
		logging.Field{Key: logging.FieldCount, Value: len(mappings)})
	return nil
}

// MapAccountCode resolves one source account code through the overrides.
// Codes without an override map to themselves.
func MapAccountCode(mappings map[string]string, code string) string {
	if mapped, ok := mappings[code]; ok && mapped != "" {
		return mapped
	}
	return code
}

// ApplyAccountMappings rewrites every entry of a parsed import through the
// overrides and recollects the unique account codes, so review output and
// staging carry the local chart codes instead of the source's.
func ApplyAccountMappings(result *models.ImportResult, mappings map[string]string) {
	if len(mappings) == 0 {
		return
	}

	seen := make(map[string]bool)
	var codes []string
	for di := range result.Documents {
		entries := result.Documents[di].Entries
		for ei := range entries {
			entries[ei].AccountCode = MapAccountCode(mappings, entries[ei].AccountCode)
			if !seen[entries[ei].AccountCode] {
				seen[entries[ei].AccountCode] = true
				codes = append(codes, entries[ei].AccountCode)
			}
		}
	}
	result.AccountCodes = codes
}

// counterpartsFile is the on-disk shape of the counterpart registry.
type counterpartsFile struct {
	Counterparts []models.Counterpart `yaml:"counterparts"`
}

// LoadCounterparts reads the local counterpart registry. A missing file
// yields an empty registry.
func (s *MappingStore) LoadCounterparts() ([]models.Counterpart, error) {
	path, err := s.FindConfigFile(s.CounterpartsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error resolving counterparts file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading counterparts file: %w", err)
	}

	var file counterpartsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing counterparts file: %w", err)
	}
	return file.Counterparts, nil
}

// SaveCounterparts writes the registry sorted by EIK for stable diffs.
func (s *MappingStore) SaveCounterparts(counterparts []models.Counterpart) error {
	sorted := make([]models.Counterpart, len(counterparts))
	copy(sorted, counterparts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EIK != sorted[j].EIK {
			return sorted[i].EIK < sorted[j].EIK
		}
		return sorted[i].Name < sorted[j].Name
	})

	data, err := yaml.Marshal(counterpartsFile{Counterparts: sorted})
	if err != nil {
		return fmt.Errorf("error serializing counterparts: %w", err)
	}
	if err := os.WriteFile(s.CounterpartsFile, data, 0o644); err != nil {
		return fmt.Errorf("error writing counterparts: %w", err)
	}
	return nil
}

// FindCounterpartByEIK looks up a counterpart by its registry number.
func FindCounterpartByEIK(counterparts []models.Counterpart, eik string) (models.Counterpart, bool) {
	if eik == "" {
		return models.Counterpart{}, false
	}
	for _, c := range counterparts {
		if c.EIK == eik {
			return c, true
		}
	}
	return models.Counterpart{}, false
}
