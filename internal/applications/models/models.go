package models

import (
	"time"

	id "jobboard/pkg/domain"
)

// Company posts jobs; OwnerID is the manager responsible for its hiring.
type Company struct {
	ID      id.CompanyID `json:"id"`
	Name    string       `json:"name"`
	OwnerID id.UserID    `json:"owner_id"`
}

// Job is a posting under one company.
type Job struct {
	ID        id.JobID     `json:"id"`
	CompanyID id.CompanyID `json:"company_id"`
	Title     string       `json:"title"`
}

// ApplicationStatus tracks where a candidate is in the hiring pipeline.
type ApplicationStatus string

const (
	ApplicationSubmitted    ApplicationStatus = "submitted"
	ApplicationInReview     ApplicationStatus = "in_review"
	ApplicationInterviewing ApplicationStatus = "interviewing"
	ApplicationRejected     ApplicationStatus = "rejected"
	ApplicationHired        ApplicationStatus = "hired"
)

// Application is a candidate's application to a job.
type Application struct {
	ID          id.ApplicationID  `json:"id"`
	JobID       id.JobID          `json:"job_id"`
	CandidateID id.UserID         `json:"candidate_id"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CompanyManagerID is the manager who owns the company.
func (c *Company) CompanyManagerID() id.UserID {
	return c.OwnerID
}

// JobContext is a job resolved together with its company.
type JobContext struct {
	Job     Job
	Company Company
}

// CompanyManagerID is the manager who owns the company posting the job.
func (c *JobContext) CompanyManagerID() id.UserID {
	return c.Company.OwnerID
}

// Context is an application resolved together with its job and company.
type Context struct {
	Application Application
	Job         Job
	Company     Company
}

// CandidateUserID is the candidate who owns the application.
func (c *Context) CandidateUserID() id.UserID {
	return c.Application.CandidateID
}

// CompanyManagerID is the manager who owns the hiring company.
func (c *Context) CompanyManagerID() id.UserID {
	return c.Company.OwnerID
}
