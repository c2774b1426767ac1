package record

import "strings"

// Kind identifies one of the fixed record collections. The value doubles as
// the storage key (file name, SQLite collection column).
type Kind string

const (
	KindSheets Kind = "excelSheets"
	KindLinks  Kind = "websiteLinks"
	KindTasks  Kind = "tasks"
)

// Envelope defaults applied on create and on backfill.
const (
	DefaultCategory = "Finance"
	DefaultStatus   = StatusPending
	DefaultPriority = PriorityMedium
)

// Spec is the per-kind configuration that replaces three copies of the same
// route and validation code: what is required and which optional blocks apply.
type Spec struct {
	Kind   Kind
	Path   string // URL segment under /api
	Label  string // singular, used in messages ("Excel sheet not found")
	Plural string

	// RequiresURL marks link-like kinds whose records always carry a non-empty url.
	RequiresURL bool

	// Scheduled kinds carry priority and dueDate.
	Scheduled bool
}

// RequiredFields lists the draft fields that must be non-empty on create.
func (s Spec) RequiredFields() []string {
	if s.RequiresURL {
		return []string{"name", "url"}
	}
	return []string{"name"}
}

// RequiredMessage is the 400 message reported when a required field is missing.
func (s Spec) RequiredMessage() string {
	if s.RequiresURL {
		return "Name and URL are required"
	}
	return "Name is required"
}

var specs = []Spec{
	{Kind: KindSheets, Path: "excel-sheets", Label: "Excel sheet", Plural: "excel sheets", RequiresURL: true},
	{Kind: KindLinks, Path: "website-links", Label: "Website link", Plural: "website links", RequiresURL: true},
	{Kind: KindTasks, Path: "tasks", Label: "Task", Plural: "tasks", Scheduled: true},
}

// aliases maps accepted spellings (storage key, path, short names) to kinds.
var aliases = map[string]Kind{
	"excelsheets":   KindSheets,
	"excel-sheets":  KindSheets,
	"sheets":        KindSheets,
	"sheet":         KindSheets,
	"websitelinks":  KindLinks,
	"website-links": KindLinks,
	"links":         KindLinks,
	"link":          KindLinks,
	"websites":      KindLinks,
	"tasks":         KindTasks,
	"task":          KindTasks,
}

// Specs returns the specs of every kind in dashboard order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Kinds returns every kind in dashboard order.
func Kinds() []Kind {
	out := make([]Kind, len(specs))
	for i, s := range specs {
		out[i] = s.Kind
	}
	return out
}

// SpecFor returns the spec of a kind.
func SpecFor(k Kind) (Spec, bool) {
	for _, s := range specs {
		if s.Kind == k {
			return s, true
		}
	}
	return Spec{}, false
}

// ParseKind resolves a user-supplied collection name.
func ParseKind(s string) (Kind, bool) {
	k, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}
