package logging

// Standardized field names for structured logging. Keeping these in one
// place makes log output consistent across parsers, the balancer and the
// submission engine.
const (
	FieldFile        = "file_path"
	FieldParser      = "parser"
	FieldDocument    = "document_number"
	FieldBatch       = "batch"
	FieldAccount     = "account_code"
	FieldCounterpart = "counterpart"
	FieldImportID    = "import_id"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldCount       = "count"
	FieldDifference  = "difference"
	FieldPeriod      = "vat_period"
	FieldVatCode     = "vat_code"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
)
