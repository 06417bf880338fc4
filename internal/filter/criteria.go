package filter

import (
	"fmt"
	"github.com/maxaizer/jobmarket/internal/entities"
	"strings"
)

type SortOrder string

const (
	SortNone       SortOrder = ""
	SortSalaryAsc  SortOrder = "salary_asc"
	SortSalaryDesc SortOrder = "salary_desc"
	SortNewest     SortOrder = "newest"
)

type Near struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// Criteria is a set of predicates combined with AND. Zero values ("Any", empty, nil) are inactive.
type Criteria struct {
	JobType   entities.JobType
	SalaryMin *float64
	SalaryMax *float64
	Province  entities.Province
	Location  string
	TextQuery string
	Near      *Near
	Sort      SortOrder
}

func (c Criteria) Validate() error {

	if !c.JobType.IsAny() && !c.JobType.IsValid() {
		return fmt.Errorf("unknown job type %q", c.JobType)
	}
	if !c.Province.IsAny() && !c.Province.IsValid() {
		return fmt.Errorf("unknown province %q", c.Province)
	}
	if c.SalaryMin != nil && *c.SalaryMin < 0 {
		return fmt.Errorf("minimum salary must not be negative")
	}
	if c.SalaryMin != nil && c.SalaryMax != nil && *c.SalaryMin > *c.SalaryMax {
		return fmt.Errorf("minimum salary %.2f is above maximum %.2f", *c.SalaryMin, *c.SalaryMax)
	}
	if c.Near != nil {
		if c.Near.RadiusKm <= 0 {
			return fmt.Errorf("radius must be positive")
		}
		if c.Near.Lat < -90 || c.Near.Lat > 90 || c.Near.Lng < -180 || c.Near.Lng > 180 {
			return fmt.Errorf("coordinates out of range")
		}
	}
	switch c.Sort {
	case SortNone, SortSalaryAsc, SortSalaryDesc, SortNewest:
	default:
		return fmt.Errorf("unknown sort order %q", c.Sort)
	}
	return nil
}

func (c Criteria) salaryActive() bool {
	return c.SalaryMin != nil || c.SalaryMax != nil
}

func (c Criteria) locationQuery() string {
	return strings.ToLower(strings.TrimSpace(c.Location))
}
