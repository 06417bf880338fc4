package screens

import (
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/livequery"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/maxaizer/jobmarket/internal/services"
)

// CompanyAnalysis aggregates the employer's applications as they change.
type CompanyAnalysis struct {
	*List[entities.Application]
}

func NewCompanyAnalysis(subscriber livequery.Subscriber, relation repositories.OwnerRelation) *CompanyAnalysis {
	return &CompanyAnalysis{List: newList[entities.Application](subscriber, repositories.DecodeApplication, employerApplications(relation))}
}

func (c *CompanyAnalysis) Analysis() services.CompanyAnalysis {
	return services.Analyze(c.Items())
}
