package domain

type ListFilter struct {
	Category    string
	Subcategory string
	Limit       int
}

func (f ListFilter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && p.Subcategory != f.Subcategory {
		return false
	}
	return true
}
