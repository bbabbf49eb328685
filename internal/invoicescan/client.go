// Package invoicescan extracts invoice data from scanned images and PDF
// files through a generative model and reconciles the extraction into the
// canonical import shape. Extractions that do not reconcile cleanly are
// flagged for manual review instead of being rejected.
package invoicescan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"bgledger/kontir/internal/parsererror"
)

// ExtractRequest carries one scanned document to the model.
type ExtractRequest struct {
	Data     []byte
	MimeType string
	FileName string
}

// ExtractedLine is one invoice line as returned by the model.
type ExtractedLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Amount      string `json:"amount"`
}

// ExtractedInvoice is the model's structured reading of a document.
type ExtractedInvoice struct {
	DocumentNumber string          `json:"documentNumber"`
	DocumentDate   string          `json:"documentDate"`
	ContractorName string          `json:"contractorName"`
	ContractorEIK  string          `json:"contractorEik"`
	VatNumber      string          `json:"vatNumber"`
	NetAmount      string          `json:"netAmount"`
	VatAmount      string          `json:"vatAmount"`
	TotalAmount    string          `json:"totalAmount"`
	Lines          []ExtractedLine `json:"lines"`
	Confidence     float64         `json:"confidence"`
}

// AIClient abstracts the extraction backend so scans can be tested without
// network access.
type AIClient interface {
	ExtractInvoice(ctx context.Context, req ExtractRequest) (*ExtractedInvoice, error)
}

const extractionPrompt = `You are reading a Bulgarian invoice. Extract the fields below
and answer with a single JSON object, nothing else:
{
  "documentNumber": "", "documentDate": "YYYY-MM-DD",
  "contractorName": "", "contractorEik": "", "vatNumber": "",
  "netAmount": "", "vatAmount": "", "totalAmount": "",
  "lines": [{"description": "", "quantity": "", "unit": "", "amount": ""}],
  "confidence": 0.0
}
Amounts are decimal strings in BGN. confidence is your own estimate in [0,1].`

// GeminiClient implements AIClient against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient dials the Gemini API with the given key and model name.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Close releases the underlying API connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// ExtractInvoice sends the document to the model and decodes its JSON
// answer.
func (g *GeminiClient) ExtractInvoice(ctx context.Context, req ExtractRequest) (*ExtractedInvoice, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MimeType, Data: req.Data},
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return nil, &parsererror.RemoteError{
			Operation: "invoice extraction", Item: req.FileName, Err: err,
		}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &parsererror.RemoteError{
			Operation: "invoice extraction", Item: req.FileName,
			Err: fmt.Errorf("empty model response"),
		}
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return decodeExtraction(text, req.FileName)
}

// decodeExtraction tolerates markdown fences around the JSON answer.
func decodeExtraction(text, fileName string) (*ExtractedInvoice, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, &parsererror.ParseError{
			Parser: "invoice-ai", FileName: fileName,
			Reason: "model answer contains no JSON object",
		}
	}

	var extracted ExtractedInvoice
	if err := json.Unmarshal([]byte(text[start:end+1]), &extracted); err != nil {
		return nil, &parsererror.ParseError{
			Parser: "invoice-ai", FileName: fileName,
			Reason: "cannot decode model answer", Err: err,
		}
	}
	return &extracted, nil
}
