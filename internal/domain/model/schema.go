package model

// Property describes one schema field.
type Property struct {
	Type     string `json:"type,omitempty"`
	Nullable *bool  `json:"nullable,omitempty"`
}

// Schema is advisory metadata about a dataset. A nil *Schema is valid and
// means no schema was supplied.
type Schema struct {
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
	// Dependencies maps a field to the fields it depends on: when a
	// depends-on field is non-null the field itself is expected non-null.
	Dependencies map[string][]string `json:"dependencies,omitempty"`
}

// RequiredFields returns the declared required fields restricted to the
// observed ones, in observed order. A field is required when listed in
// Required or declared with nullable=false.
func (s *Schema) RequiredFields(observed []string) []string {
	if s == nil {
		return nil
	}
	declared := make(map[string]struct{}, len(s.Required))
	for _, f := range s.Required {
		declared[f] = struct{}{}
	}
	for name, p := range s.Properties {
		if p.Nullable != nil && !*p.Nullable {
			declared[name] = struct{}{}
		}
	}
	if len(declared) == 0 {
		return nil
	}
	var out []string
	for _, f := range observed {
		if _, ok := declared[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// HasRequirements reports whether the schema declares any required field.
func (s *Schema) HasRequirements() bool {
	if s == nil {
		return false
	}
	if len(s.Required) > 0 {
		return true
	}
	for _, p := range s.Properties {
		if p.Nullable != nil && !*p.Nullable {
			return true
		}
	}
	return false
}
