package services

import (
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/samber/lo"
	"sort"
	"strings"
)

const unknownPosition = "Unknown"

type Count struct {
	Name  string
	Count int
}

type CompanyAnalysis struct {
	Total      int
	ByPosition []Count
	ByStatus   []Count
}

// Analyze aggregates an employer's applications by job position and by status.
// Groups are ordered by size, ties by name.
func Analyze(applications []entities.Application) CompanyAnalysis {

	byPosition := lo.CountValuesBy(applications, func(a entities.Application) string {
		if position := strings.TrimSpace(a.Position); position != "" {
			return position
		}
		return unknownPosition
	})
	byStatus := lo.CountValuesBy(applications, func(a entities.Application) string {
		return string(a.Status)
	})

	return CompanyAnalysis{
		Total:      len(applications),
		ByPosition: toCounts(byPosition),
		ByStatus:   toCounts(byStatus),
	}
}

func toCounts(grouped map[string]int) []Count {
	counts := lo.MapToSlice(grouped, func(name string, count int) Count {
		return Count{Name: name, Count: count}
	})
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}
