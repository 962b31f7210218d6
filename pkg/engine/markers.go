package engine

// Condition names one boolean piece of evidence an analyzer looks for
type Condition string

// Console log conditions
const (
	TokenObtained  Condition = "token_obtained"
	TokenError     Condition = "token_error"
	TokenIncluded  Condition = "token_included"
	TokenEmpty     Condition = "token_empty"
	CredentialsSet Condition = "credentials_set"
	Status403      Condition = "status_403"
	Status401      Condition = "status_401"
	Status200      Condition = "status_200"
)

// Header conditions
const (
	CSRFHeader  Condition = "csrf_header"
	ContentType Condition = "content_type"
	Cookies     Condition = "cookies"
)

// Response conditions
const (
	ResponseOK Condition = "success"
	HasResult  Condition = "has_result"
)

// EvidenceFlags maps each condition checked by one analyzer call to whether it was observed
type EvidenceFlags map[Condition]bool

// Has reports whether the condition was observed
func (f EvidenceFlags) Has(c Condition) bool {
	return f[c]
}

// Marker pairs a condition with the literal text that proves it
type Marker struct {
	Condition Condition
	Text      string
}

// ConsoleMarkers is the catalog searched in browser console output, in report order.
var ConsoleMarkers = []Marker{
	{TokenObtained, "[CSRF] Token obtained successfully"},
	{TokenError, "[CSRF] Error getting token"},
	{TokenIncluded, "[tRPC Client] CSRF token included"},
	{TokenEmpty, "EMPTY!"},
	{CredentialsSet, "[tRPC Client] Credentials: include"},
	{Status403, "status: 403"},
	{Status401, "status: 401"},
	{Status200, "status: 200"},
}

// statusOutcome maps a response status marker to the finding it produces.
// The first outcome whose condition is present wins.
type statusOutcome struct {
	condition Condition
	finding   Finding
}

var statusOutcomes = []statusOutcome{
	{Status200, Finding{SeveritySuccess, "Response 200 - request succeeded"}},
	{Status403, Finding{SeverityIssue, "Response 403 - CSRF token rejected by the server"}},
	{Status401, Finding{SeverityWarning, "Response 401 - user not found or wrong password"}},
}

// headerSignal describes one header the request must (or should) carry.
// A nil absent finding means a missing header is not reported.
type headerSignal struct {
	condition Condition
	name      string
	present   Finding
	absent    *Finding
}

var headerSignals = []headerSignal{
	{
		condition: CSRFHeader,
		name:      "x-csrf-token",
		present:   Finding{SeveritySuccess, "Header X-CSRF-Token present"},
		absent:    &Finding{SeverityIssue, "Header X-CSRF-Token NOT found"},
	},
	{
		condition: ContentType,
		name:      "content-type",
		present:   Finding{SeveritySuccess, "Content-Type set"},
	},
	{
		condition: Cookies,
		name:      "cookie",
		present:   Finding{SeveritySuccess, "Cookies are being sent"},
		absent:    &Finding{SeverityWarning, "Cookies do not appear in the headers"},
	},
}

// errorClass classifies a server error message by keyword
type errorClass struct {
	keywords []string
	severity Severity
	label    string
}

var errorClasses = []errorClass{
	{keywords: []string{"csrf"}, severity: SeverityIssue, label: "CSRF error"},
	{keywords: []string{"email", "password", "senha"}, severity: SeverityWarning, label: "Authentication error"},
}

// unclassified server errors are treated as defects
var defaultErrorClass = errorClass{severity: SeverityIssue, label: "Server error"}
