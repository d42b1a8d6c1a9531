package models

// SortMode orders the boards matched by a QueryFilter
type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortRandom SortMode = "random"
)

// QueryFilter is the structured search extracted from a natural-language query.
// Every field is optional; nil means "no constraint".
type QueryFilter struct {
	StartDate  *string   `json:"startDate" validate:"omitempty,iso_date"`
	EndDate    *string   `json:"endDate" validate:"omitempty,iso_date"`
	Tags       []string  `json:"tags"`
	Keywords   []string  `json:"keywords"`
	DaysOfWeek []int     `json:"daysOfWeek" validate:"omitempty,dive,min=0,max=6"`
	HasImage   *bool     `json:"hasImage"`
	Sort       *SortMode `json:"sort" validate:"omitempty,sort_mode"`
	Limit      *int      `json:"limit" validate:"omitempty,min=1"`
}

// IsEmpty reports whether the filter carries no constraints at all
func (f *QueryFilter) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil &&
		len(f.Tags) == 0 && len(f.Keywords) == 0 && len(f.DaysOfWeek) == 0 &&
		f.HasImage == nil && f.Sort == nil && f.Limit == nil
}
