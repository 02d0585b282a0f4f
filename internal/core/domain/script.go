package domain

// Tag labels scripts for catalog filtering.
type Tag struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Category groups scripts; categories may nest via Parent.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parent      *string `json:"parent,omitempty"`
}

// Script is a catalog entry. The issuance core reads the identity and the
// allow_issue_* capability flags; everything else belongs to the catalog.
type Script struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Description            string         `json:"description"`
	CategoryID             string         `json:"category"`
	Enabled                bool           `json:"enabled"`
	IsActive               bool           `json:"is_active"`
	ExtraParamsSchema      map[string]any `json:"extra_params_schema,omitempty"`
	AllowIssuePlain        bool           `json:"allow_issue_plain"`
	AllowIssueEncoded      bool           `json:"allow_issue_encoded"`
	AllowIssueEncodedLK    bool           `json:"allow_issue_encoded_lk"`
	AllowIssueEncodedExp   bool           `json:"allow_issue_encoded_exp"`
	AllowIssueEncodedLKExp bool           `json:"allow_issue_encoded_lk_exp"`
	Tags                   []Tag          `json:"tags"`
}

// Downloadable reports whether the script may be issued at all. Force-issue
// permissions do not bypass this check.
func (s Script) Downloadable() bool {
	return s.Enabled && s.IsActive
}

// AllowsIssue maps the requested issuance shape to the script's capability
// flags. The mapping is centralized here so every endpoint consults the same
// table.
func (s Script) AllowsIssue(t IssueType) bool {
	switch t {
	case IssuePlain:
		return s.AllowIssuePlain
	case IssueEncoded:
		return s.AllowIssueEncoded
	case IssueEncodedLK:
		return s.AllowIssueEncodedLK
	case IssueEncodedExp:
		return s.AllowIssueEncodedExp
	case IssueEncodedExpLK:
		return s.AllowIssueEncodedLKExp
	default:
		return false
	}
}

// ScriptFilter narrows catalog listings. Nil fields are ignored.
type ScriptFilter struct {
	CategoryID *string
	Enabled    *bool
	IsActive   *bool
	Tag        *string
	WithoutTag *string
}

// Page is a limit/offset window over issued-license listings.
type Page struct {
	Limit  int
	Offset int
}

const (
	// DefaultPageLimit is applied when a listing request carries no limit.
	DefaultPageLimit = 100
	// MaxPageLimit caps the page size of issued-license listings.
	MaxPageLimit = 1000
)

// Normalize clamps the page to the allowed window.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
