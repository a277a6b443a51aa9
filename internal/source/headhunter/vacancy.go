package headhunter

// Vacancies is a search result page set in API order.
type Vacancies struct {
	Items []*Vacancy
}

// Vacancy holds the fields used to decide whether a search item is worth
// matching. The item itself is kept untouched for the listing normalizer.
type Vacancy struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	HasTest  bool   `json:"has_test,omitempty"`
	Archived bool   `json:"archived,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`

	raw Item
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// Records returns the raw search items in order.
func (v *Vacancies) Records() []map[string]any {
	records := make([]map[string]any, 0, len(v.Items))
	for _, vacancy := range v.Items {
		records = append(records, vacancy.raw)
	}
	return records
}

// ExcludeWithTest drops vacancies that require a test task and returns their ids.
func (v *Vacancies) ExcludeWithTest() []string {
	return v.exclude(func(vacancy *Vacancy) bool { return vacancy.HasTest })
}

// ExcludeArchived drops vacancies that no longer accept candidates.
func (v *Vacancies) ExcludeArchived() []string {
	return v.exclude(func(vacancy *Vacancy) bool { return vacancy.Archived })
}

// exclude preserves the order of kept vacancies.
func (v *Vacancies) exclude(drop func(*Vacancy) bool) []string {
	var excluded []string
	kept := v.Items[:0]
	for _, vacancy := range v.Items {
		if drop(vacancy) {
			excluded = append(excluded, vacancy.ID)
			continue
		}
		kept = append(kept, vacancy)
	}
	v.Items = kept
	return excluded
}
