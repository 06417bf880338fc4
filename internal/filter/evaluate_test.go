package filter

import (
	"encoding/json"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"math/rand"
	"testing"
	"time"
)

func ptr(v float64) *float64 {
	return &v
}

func job(id, title string, jobType entities.JobType, salary entities.Salary, province entities.Province) entities.JobPosting {
	return entities.JobPosting{ID: id, Title: title, Type: jobType, Salary: salary, Province: province, Location: "Toronto, ON"}
}

func ids(jobs []entities.JobPosting) []string {
	return lo.Map(jobs, func(j entities.JobPosting, _ int) string { return j.ID })
}

func fiveJobs() []entities.JobPosting {
	return []entities.JobPosting{
		job("1", "Backend Developer", entities.FullTime, entities.NewSalary(85000), entities.Ontario),
		job("2", "Barista", entities.PartTime, entities.NewSalary(30000), entities.Ontario),
		job("3", "Data Analyst", entities.FullTime, entities.NewSalary(95000), entities.Ontario),
		job("4", "QA Engineer", entities.FullTime, entities.NewSalary(60000), entities.BritishColumbia),
		job("5", "Support Specialist", entities.FullTime, entities.NewSalary(50000), entities.Ontario),
	}
}

func Test_Evaluate_WhenFourFiltersActive_ShouldReturnMatchingInOriginalOrder(t *testing.T) {
	assert := assert.New(t)
	criteria := Criteria{
		JobType:   entities.FullTime,
		SalaryMin: ptr(50000),
		SalaryMax: ptr(90000),
		Province:  entities.Ontario,
	}

	result := Evaluate(fiveJobs(), criteria)

	assert.Equal([]string{"1", "5"}, ids(result))
}

func Test_Evaluate_WhenNothingActive_ShouldReturnEverything(t *testing.T) {
	assert := assert.New(t)
	criteria := Criteria{JobType: entities.JobTypeAny, Province: entities.ProvinceAny}

	assert.Equal([]string{"1", "2", "3", "4", "5"}, ids(Evaluate(fiveJobs(), criteria)))
	assert.Empty(Predicates(criteria))
}

func Test_Evaluate_WhenSalaryUnparseable_ShouldExcludeOnlyWithSalaryBound(t *testing.T) {
	assert := assert.New(t)
	jobs := []entities.JobPosting{
		job("ok", "Dev", entities.FullTime, entities.NewSalary(70000), entities.Ontario),
		job("bad", "Dev", entities.FullTime, entities.Salary{}, entities.Ontario),
	}

	assert.Equal([]string{"ok"}, ids(Evaluate(jobs, Criteria{SalaryMin: ptr(0)})))
	assert.Equal([]string{"ok", "bad"}, ids(Evaluate(jobs, Criteria{})))
}

func Test_Evaluate_WhenLegacySalaryNotDecimal_ShouldExcludeWithSalaryBound(t *testing.T) {
	assert := assert.New(t)
	var jobs []entities.JobPosting
	for _, raw := range []string{`"NaN"`, `"Inf"`, `"0x1p16"`, `"$60,000"`} {
		var j entities.JobPosting
		assert.NoError(json.Unmarshal([]byte(`{"title":"Dev","salary":`+raw+`}`), &j))
		j.ID = raw
		jobs = append(jobs, j)
	}

	assert.Equal([]string{`"$60,000"`}, ids(Evaluate(jobs, Criteria{SalaryMin: ptr(50000), SalaryMax: ptr(90000)})))
	assert.Equal([]string{`"$60,000"`}, ids(Evaluate(jobs, Criteria{SalaryMin: ptr(50000)})))
}

func Test_Evaluate_SalaryBounds_ShouldBeInclusive(t *testing.T) {
	assert := assert.New(t)

	result := Evaluate(fiveJobs(), Criteria{SalaryMin: ptr(50000), SalaryMax: ptr(85000)})

	assert.Equal([]string{"1", "4", "5"}, ids(result))
}

func Test_Evaluate_TextQuery_ShouldMatchPrefixNotSubstring(t *testing.T) {
	assert := assert.New(t)
	jobs := []entities.JobPosting{
		{ID: "1", Title: "Developer"},
		{ID: "2", Title: "Senior Developer"},
		{ID: "3", Title: "Dev"},
		{ID: "4", Title: "developer"},
		{ID: "5", Title: "Devops Lead"},
	}

	assert.Equal([]string{"1", "3", "5"}, ids(Evaluate(jobs, Criteria{TextQuery: "Dev"})))
}

func Test_Evaluate_Location_ShouldMatchCaseInsensitiveSubstring(t *testing.T) {
	assert := assert.New(t)
	jobs := []entities.JobPosting{
		{ID: "1", Location: "Downtown Toronto"},
		{ID: "2", Location: "Vancouver"},
	}

	assert.Equal([]string{"1"}, ids(Evaluate(jobs, Criteria{Location: "  TORONTO "})))
}

func Test_Evaluate_Near_ShouldUseHaversineRadius(t *testing.T) {
	assert := assert.New(t)
	jobs := []entities.JobPosting{
		{ID: "toronto", Latitude: 43.6532, Longitude: -79.3832},
		{ID: "mississauga", Latitude: 43.5890, Longitude: -79.6441},
		{ID: "ottawa", Latitude: 45.4215, Longitude: -75.6972},
		{ID: "nowhere"},
	}

	result := Evaluate(jobs, Criteria{Near: &Near{Lat: 43.6532, Lng: -79.3832, RadiusKm: 50}})

	assert.Equal([]string{"toronto", "mississauga"}, ids(result))
	assert.InDelta(352, DistanceKm(43.6532, -79.3832, 45.4215, -75.6972), 5)
}

func Test_Evaluate_ShouldEqualIntersectionOfSinglePredicates(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(42))
	types := append(entities.JobTypes(), entities.JobTypeAny)
	provinces := append(entities.Provinces(), entities.ProvinceAny)

	var jobs []entities.JobPosting
	for i := 0; i < 60; i++ {
		salary := entities.NewSalary(float64(20000 + rng.Intn(100000)))
		if rng.Intn(10) == 0 {
			salary = entities.Salary{}
		}
		jobs = append(jobs, entities.JobPosting{
			ID:        string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Title:     []string{"Dev", "Developer", "Designer", "Analyst"}[rng.Intn(4)],
			Type:      entities.JobTypes()[rng.Intn(len(entities.JobTypes()))],
			Province:  entities.Provinces()[rng.Intn(len(entities.Provinces()))],
			Salary:    salary,
			Location:  []string{"Toronto", "Calgary", "Montreal"}[rng.Intn(3)],
			Latitude:  43 + rng.Float64()*6,
			Longitude: -80 + rng.Float64()*6,
		})
	}

	for run := 0; run < 200; run++ {
		criteria := Criteria{
			JobType:  types[rng.Intn(len(types))],
			Province: provinces[rng.Intn(len(provinces))],
		}
		if rng.Intn(2) == 0 {
			criteria.SalaryMin = ptr(float64(rng.Intn(60000)))
		}
		if rng.Intn(2) == 0 {
			criteria.SalaryMax = ptr(float64(60000 + rng.Intn(60000)))
		}
		if rng.Intn(2) == 0 {
			criteria.TextQuery = []string{"Dev", "De", "An"}[rng.Intn(3)]
		}
		if rng.Intn(3) == 0 {
			criteria.Location = "to"
		}
		if rng.Intn(3) == 0 {
			criteria.Near = &Near{Lat: 45, Lng: -77, RadiusKm: 300}
		}

		expected := jobs
		predicates := Predicates(criteria)
		rng.Shuffle(len(predicates), func(i, j int) { predicates[i], predicates[j] = predicates[j], predicates[i] })
		for _, p := range predicates {
			expected = lo.Filter(expected, func(j entities.JobPosting, _ int) bool { return p(j) })
		}

		first := Evaluate(jobs, criteria)
		assert.Equal(ids(expected), ids(first))
		assert.Equal(ids(first), ids(Evaluate(jobs, criteria)))
		assert.Equal(ids(first), ids(Evaluate(first, criteria)))
	}
}

func Test_Evaluate_WhenSorted_ShouldOrderStablyWithoutTouchingInput(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()
	jobs := []entities.JobPosting{
		{ID: "a", Salary: entities.NewSalary(50000), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b", Salary: entities.Salary{}, CreatedAt: now},
		{ID: "c", Salary: entities.NewSalary(70000), CreatedAt: now.Add(-time.Hour)},
		{ID: "d", Salary: entities.NewSalary(50000), CreatedAt: now.Add(-3 * time.Hour)},
	}

	assert.Equal([]string{"a", "d", "c", "b"}, ids(Evaluate(jobs, Criteria{Sort: SortSalaryAsc})))
	assert.Equal([]string{"c", "a", "d", "b"}, ids(Evaluate(jobs, Criteria{Sort: SortSalaryDesc})))
	assert.Equal([]string{"b", "c", "a", "d"}, ids(Evaluate(jobs, Criteria{Sort: SortNewest})))
	assert.Equal([]string{"a", "b", "c", "d"}, ids(jobs))
}

func Test_Criteria_Validate_ShouldRejectInconsistentBounds(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Criteria{}.Validate())
	assert.NoError(Criteria{JobType: entities.Contract, Province: entities.Yukon, Sort: SortNewest}.Validate())
	assert.Error(Criteria{SalaryMin: ptr(10), SalaryMax: ptr(5)}.Validate())
	assert.Error(Criteria{SalaryMin: ptr(-1)}.Validate())
	assert.Error(Criteria{JobType: "Gig"}.Validate())
	assert.Error(Criteria{Province: "XX"}.Validate())
	assert.Error(Criteria{Near: &Near{RadiusKm: 0}}.Validate())
	assert.Error(Criteria{Sort: "random"}.Validate())
}
