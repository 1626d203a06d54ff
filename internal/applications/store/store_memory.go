package store

import (
	"context"
	"sync"

	"jobboard/internal/applications/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

// InMemory keeps companies, jobs and applications in maps.
type InMemory struct {
	mu           sync.RWMutex
	companies    map[id.CompanyID]models.Company
	jobs         map[id.JobID]models.Job
	applications map[id.ApplicationID]models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{
		companies:    make(map[id.CompanyID]models.Company),
		jobs:         make(map[id.JobID]models.Job),
		applications: make(map[id.ApplicationID]models.Application),
	}
}

func (s *InMemory) SaveCompany(_ context.Context, c models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
	return nil
}

func (s *InMemory) SaveJob(_ context.Context, j models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[j.CompanyID]; !ok {
		return sentinel.ErrNotFound
	}
	s.jobs[j.ID] = j
	return nil
}

func (s *InMemory) SaveApplication(_ context.Context, a models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[a.JobID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applications[a.ID] = a
	return nil
}

// Resolve returns the application with its job and company.
func (s *InMemory) Resolve(_ context.Context, appID id.ApplicationID) (*models.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	job, ok := s.jobs[app.JobID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	company, ok := s.companies[job.CompanyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.Context{Application: app, Job: job, Company: company}, nil
}

func (s *InMemory) FindCompany(_ context.Context, companyID id.CompanyID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// ResolveJob returns the job with its company.
func (s *InMemory) ResolveJob(_ context.Context, jobID id.JobID) (*models.JobContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	company, ok := s.companies[job.CompanyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.JobContext{Job: job, Company: company}, nil
}
