package filter

import (
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/samber/lo"
	"math"
	"sort"
	"strings"
)

type Predicate func(job entities.JobPosting) bool

// Predicates returns one predicate per active criterion. Their order carries no meaning.
func Predicates(c Criteria) []Predicate {

	var predicates []Predicate

	if !c.JobType.IsAny() {
		predicates = append(predicates, func(job entities.JobPosting) bool {
			return job.Type == c.JobType
		})
	}

	if c.salaryActive() {
		lower, upper := c.SalaryMin, c.SalaryMax
		predicates = append(predicates, func(job entities.JobPosting) bool {
			// a salary that never parsed is excluded by InRange
			return job.Salary.InRange(lower, upper)
		})
	}

	if !c.Province.IsAny() {
		predicates = append(predicates, func(job entities.JobPosting) bool {
			return job.Province == c.Province
		})
	}

	if location := c.locationQuery(); location != "" {
		predicates = append(predicates, func(job entities.JobPosting) bool {
			return strings.Contains(strings.ToLower(job.Location), location)
		})
	}

	if c.TextQuery != "" {
		lower, upper := c.TextQuery, c.TextQuery+docstore.PrefixSentinel
		predicates = append(predicates, func(job entities.JobPosting) bool {
			return job.Title >= lower && job.Title < upper
		})
	}

	if c.Near != nil {
		near := *c.Near
		predicates = append(predicates, func(job entities.JobPosting) bool {
			if !job.HasCoordinates() {
				return false
			}
			return DistanceKm(near.Lat, near.Lng, job.Latitude, job.Longitude) <= near.RadiusKm
		})
	}

	return predicates
}

// Evaluate keeps the jobs matching every active criterion. Without a sort order the
// input order is preserved. The input slice is never modified.
func Evaluate(jobs []entities.JobPosting, c Criteria) []entities.JobPosting {

	predicates := Predicates(c)
	result := lo.Filter(jobs, func(job entities.JobPosting, _ int) bool {
		for _, matches := range predicates {
			if !matches(job) {
				return false
			}
		}
		return true
	})

	Sort(result, c.Sort)
	return result
}

// Sort orders jobs in place and is stable. Jobs without a valid salary go last for salary orders.
func Sort(jobs []entities.JobPosting, order SortOrder) {
	switch order {
	case SortSalaryAsc, SortSalaryDesc:
		sort.SliceStable(jobs, func(i, j int) bool {
			left, right := jobs[i].Salary, jobs[j].Salary
			if left.Valid != right.Valid {
				return left.Valid
			}
			if order == SortSalaryAsc {
				return left.Amount < right.Amount
			}
			return left.Amount > right.Amount
		})
	case SortNewest:
		sort.SliceStable(jobs, func(i, j int) bool {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		})
	}
}

const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
