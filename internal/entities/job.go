package entities

import "time"

type JobType string

const (
	JobTypeAny JobType = "Any"
	FullTime   JobType = "Full-Time"
	PartTime   JobType = "Part-Time"
	Contract   JobType = "Contract"
	Internship JobType = "Internship"
	Temporary  JobType = "Temporary"
)

func (t JobType) IsAny() bool {
	return t == "" || t == JobTypeAny
}

func (t JobType) IsValid() bool {
	switch t {
	case FullTime, PartTime, Contract, Internship, Temporary:
		return true
	default:
		return false
	}
}

func JobTypes() []JobType {
	return []JobType{FullTime, PartTime, Contract, Internship, Temporary}
}

type CompanyDetails struct {
	Name        string `json:"name,omitempty"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	Description string `json:"description,omitempty"`
	Size        string `json:"size,omitempty"`
}

type JobPosting struct {
	ID             string         `json:"-"`
	Title          string         `json:"title" validate:"required,max=200"`
	Company        string         `json:"company" validate:"required,max=200"`
	Location       string         `json:"location" validate:"required"`
	Province       Province       `json:"province" validate:"province"`
	Latitude       float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude      float64        `json:"longitude" validate:"gte=-180,lte=180"`
	Type           JobType        `json:"type" validate:"jobtype"`
	Salary         Salary         `json:"salary" validate:"salary"`
	Description    string         `json:"description"`
	CompanyDetails CompanyDetails `json:"companyDetails"`
	CreatedBy      string         `json:"createdBy"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (j JobPosting) HasCoordinates() bool {
	return j.Latitude != 0 || j.Longitude != 0
}
