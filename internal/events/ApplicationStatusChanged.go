package events

import "github.com/maxaizer/jobmarket/internal/entities"

var ApplicationStatusChangedTopic = "ApplicationStatusChangedEvent"

type ApplicationStatusChanged struct {
	Application entities.Application
	Previous    entities.ApplicationStatus
	JobTitle    string
}
