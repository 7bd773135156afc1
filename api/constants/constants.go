package constants

// Request validation
const (
	ErrMissingScope       = "user_id, company_id and vault_id are required"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrInvalidMultipart   = "Failed to parse multipart form"
	ErrNoFileUploaded     = "No file uploaded under the 'file' field"
	ErrUnsupportedFile    = "Unsupported file type. Upload a .xlsx, .xls or .csv file"
	ErrFileTooLarge       = "File exceeds the maximum upload size of %d MB"
	ErrFileRead           = "Failed to read uploaded file"
	ErrInvalidBool        = "invalid boolean for %s: %q"
	ErrInvalidDate        = "invalid date for %s: %q (use YYYY-MM-DD)"
	ErrInvalidFlow        = "invalid flow_type %q (use income or expense)"
	ErrDeleteNeedsFilter  = "at least one filter is required to delete records"
	ErrInvalidPageRequest = "invalid pagination parameters"
)

// Ingestion outcomes
const (
	ErrNoValidHeader  = "No sheet has a valid header row. Expected columns fecha, tipo and categoria within the first 40 rows"
	ErrPeriodConflict = "Records for period %s were already uploaded. Enable period update to replace them"
	ErrIngestFailed   = "Failed to store the uploaded ledger. Nothing was saved"
	ErrQueryFailed    = "Failed to query ledger records"
	ErrDeleteFailed   = "Failed to delete ledger records"
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
)

// Date formats
const (
	DateFormat = "2006-01-02"
)
