package events

import "github.com/maxaizer/jobmarket/internal/entities"

var JobPostedTopic = "JobPostedEvent"

type JobPosted struct {
	Job      entities.JobPosting
	OwnerUID string
}
