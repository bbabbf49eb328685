// Package controlisyparser reads Controlisy accounting exports and
// reconciles them into the canonical import model: contractors, documents
// with balanced entry sets, and the VAT operation codes the purchase and
// sales journals expect.
package controlisyparser

import (
	"encoding/xml"
	"os"
	"strings"

	"gopkg.in/xmlpath.v2"

	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

const parserName = "controlisy"

var log logging.Logger = logging.NewLogrusAdapter("info", "text")

// SetLogger replaces the package logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// ParseFile parses one Controlisy XML export into an ImportResult.
func ParseFile(path string) (*models.ImportResult, error) {
	log.WithField(logging.FieldFile, path).Info("Parsing Controlisy export")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: path,
			Reason: "cannot read file", Err: err,
		}
	}

	result, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(result.Documents)},
		logging.Field{Key: "kind", Value: result.DocumentKind},
	).Info("Controlisy export parsed")
	return result, nil
}

// Parse decodes raw export bytes. The file name is kept for journal kind
// detection and error scoping.
func Parse(data []byte, fileName string) (*models.ImportResult, error) {
	content, err := decodeContent(data)
	if err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: fileName,
			Reason: "cannot decode character encoding", Err: err,
		}
	}
	content = escapeInnerQuotes(content)

	var raw rawFile
	if err := xml.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: fileName,
			Reason: "malformed XML", Err: err,
		}
	}

	if len(raw.Documents) == 0 && len(raw.Contractors) == 0 {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       fileName,
			ExpectedFormat: "Controlisy export with Contractors and Documents sections",
			Msg:            "no Contractors or Documents elements found",
		}
	}

	return buildResult(&raw, fileName), nil
}

// ValidateFormat checks whether a file looks like a Controlisy export
// without fully parsing it.
func ValidateFormat(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content, err := decodeContent(data)
	if err != nil {
		return false, nil
	}
	content = escapeInnerQuotes(content)

	root, err := xmlpath.Parse(strings.NewReader(content))
	if err != nil {
		return false, nil
	}

	docs := xmlpath.MustCompile("//Documents/Document")
	contractors := xmlpath.MustCompile("//Contractors/Contractor")
	return docs.Exists(root) || contractors.Exists(root), nil
}
