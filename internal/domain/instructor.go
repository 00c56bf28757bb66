package domain

// SearchScope selects which column family an instructor search matches against.
type SearchScope string

const (
	ScopeAll     SearchScope = "all"
	ScopeName    SearchScope = "name"
	ScopeField   SearchScope = "field"
	ScopeSubject SearchScope = "subject"
)

func (s SearchScope) IsValid() bool {
	switch s {
	case ScopeAll, ScopeName, ScopeField, ScopeSubject:
		return true
	default:
		return false
	}
}

// Instructor is one roster row. Column names in the source sheet drift, so the
// store maps them by substring; the core only ever sees these plain fields.
type Instructor struct {
	Name           string            `json:"name"`
	Affiliation    string            `json:"affiliation,omitempty"`
	Role           string            `json:"role,omitempty"`
	Subject        string            `json:"subject,omitempty"`
	Email          string            `json:"email,omitempty"`
	PrimaryTopic   string            `json:"primary_topic,omitempty"`
	SecondaryTopic string            `json:"secondary_topic,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// ToSubject projects the roster row onto the pipeline's input.
func (i *Instructor) ToSubject() Subject {
	return Subject{
		Name:           i.Name,
		Role:           i.Role,
		PrimaryTopic:   i.PrimaryTopic,
		SecondaryTopic: i.SecondaryTopic,
	}
}

// InstructorStore is the external roster collaborator. The pipeline depends on
// this contract only; fuzzy column-name matching lives behind it.
type InstructorStore interface {
	Search(query string, scope SearchScope) []*Instructor
	Count() int
}
