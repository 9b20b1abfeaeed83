package entity

import "strings"

// Relation is the structured judgment the classifier produced for a paper.
type Relation struct {
	// Categories is an ordered set of category tags, kept verbatim.
	Categories []string
	// Explanation says why the paper was put in those categories.
	Explanation string
	// RelatedFields lists neighbouring subfields in the order the model gave them.
	RelatedFields []string
	// Summary is an optional one-sentence summary of the paper.
	Summary string
}

// Validate checks that all required fields are present.
func (r Relation) Validate() error {
	if len(r.Categories) == 0 {
		return &ValidationError{Field: "categories", Message: "at least one category is required"}
	}
	for _, c := range r.Categories {
		if strings.TrimSpace(c) == "" {
			return &ValidationError{Field: "categories", Message: "category must not be blank"}
		}
	}
	if strings.TrimSpace(r.Explanation) == "" {
		return &ValidationError{Field: "explanation", Message: "explanation is required"}
	}
	if len(r.RelatedFields) == 0 {
		return &ValidationError{Field: "related_fields", Message: "at least one related field is required"}
	}
	return nil
}
