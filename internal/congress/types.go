package congress

// These types model the permissive subset of the congress.gov v3 JSON
// responses spec.md §6 documents. Unknown fields are ignored by
// encoding/json by default; fields not present in a given response decode
// to their zero value, which callers treat as "contributed nothing"
// rather than a hard error.

// BillListEntry is one entry of the /bill/{congress}/{billType} list
// response.
type BillListEntry struct {
	Number     string `json:"number"`
	UpdateDate string `json:"updateDate"`
}

// BillsListResponse is the /bill/{congress}/{billType} response.
type BillsListResponse struct {
	Bills []BillListEntry `json:"bills"`
}

// Sponsor is one entry of a bill detail's sponsors array.
type Sponsor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Party     string `json:"party"`
	State     string `json:"state"`
}

// BillDetail is the /bill/{congress}/{billType}/{n} response's "bill" key.
type BillDetail struct {
	Title          string    `json:"title"`
	IntroducedDate string    `json:"introducedDate"`
	Sponsors       []Sponsor `json:"sponsors"`
}

type billDetailEnvelope struct {
	Bill BillDetail `json:"bill"`
}

// SourceSystem is an action's origin system.
type SourceSystem struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// Action is one entry of the /actions response.
type Action struct {
	ActionCode   string       `json:"actionCode"`
	ActionDate   string       `json:"actionDate"`
	SourceSystem SourceSystem `json:"sourceSystem"`
	Text         string       `json:"text"`
	Type         string       `json:"type"`
}

type actionsEnvelope struct {
	Actions []Action `json:"actions"`
}

// PolicyArea is the /subjects response's nested policyArea object.
type PolicyArea struct {
	Name       string `json:"name"`
	UpdateDate string `json:"updateDate"`
}

type subjectsEnvelope struct {
	Subjects struct {
		PolicyArea *PolicyArea `json:"policyArea"`
	} `json:"subjects"`
}

// Summary is one entry of the /summaries response.
type Summary struct {
	ActionDate  string `json:"actionDate"`
	ActionDesc  string `json:"actionDesc"`
	Text        string `json:"text"`
	UpdateDate  string `json:"updateDate"`
	VersionCode string `json:"versionCode"`
}

type summariesEnvelope struct {
	Summaries []Summary `json:"summaries"`
}

// TextFormat is one format entry (e.g. "Formatted Text", "PDF") of a text
// version.
type TextFormat struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// TextVersion is one entry of the /text response's textVersions array.
// Upstream ordering is assumed oldest-first, latest-last (spec.md §9 open
// question); the Assembler takes the last entry.
type TextVersion struct {
	Date    string       `json:"date"`
	Type    string       `json:"type"`
	Formats []TextFormat `json:"formats"`
}

type textEnvelope struct {
	TextVersions []TextVersion `json:"textVersions"`
}
