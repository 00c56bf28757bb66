package domain

// ProfileAttribute is one labelled fact from a person card. Slice order is
// extraction order; absent fields simply are not present.
type ProfileAttribute struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PersonProfile is the structured result of one person-search call.
type PersonProfile struct {
	Name        string             `json:"name"`
	SourceLabel string             `json:"source_label"`
	SourceURL   string             `json:"source_url"`
	Attributes  []ProfileAttribute `json:"attributes"`
	ImageURL    string             `json:"image_url,omitempty"`
}

// Attribute returns the first value recorded under label, or "".
func (p *PersonProfile) Attribute(label string) string {
	if p == nil {
		return ""
	}
	for _, attr := range p.Attributes {
		if attr.Label == label {
			return attr.Value
		}
	}
	return ""
}

// AddAttribute appends a labelled value, preserving insertion order. Empty
// labels and values are dropped at the source.
func (p *PersonProfile) AddAttribute(label, value string) {
	if label == "" || value == "" {
		return
	}
	p.Attributes = append(p.Attributes, ProfileAttribute{Label: label, Value: value})
}
