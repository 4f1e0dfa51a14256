package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

type seedFile struct {
	Jobs []seedJob `yaml:"jobs"`
}

type seedJob struct {
	ID             string     `yaml:"id"`
	Title          string     `yaml:"title"`
	Company        string     `yaml:"company"`
	Description    string     `yaml:"description"`
	Requirements   string     `yaml:"requirements"`
	Location       string     `yaml:"location"`
	RemoteType     string     `yaml:"remote_type"`
	EmploymentType string     `yaml:"employment_type"`
	Industry       string     `yaml:"industry"`
	Salary         seedSalary `yaml:"salary"`
	PostedAt       time.Time  `yaml:"posted_at"`
}

type seedSalary struct {
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Currency string   `yaml:"currency"`
}

type jobUpserter interface {
	Upsert(ctx domain.Context, j domain.Job) error
}

type jobPublisher interface {
	PublishJobIngested(ctx context.Context, jobIDs ...string) error
}

// loadSeed parses a YAML list of postings. Every job needs an id and a title.
func loadSeed(path string) ([]domain.Job, error) {
	// #nosec G304 -- path comes from the operator's command line
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("op=seed.load: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("op=seed.load: %w: %v", domain.ErrInvalidArgument, err)
	}
	out := make([]domain.Job, 0, len(f.Jobs))
	for i, sj := range f.Jobs {
		if strings.TrimSpace(sj.ID) == "" || strings.TrimSpace(sj.Title) == "" {
			return nil, fmt.Errorf("op=seed.load: %w: jobs[%d] needs id and title", domain.ErrInvalidArgument, i)
		}
		out = append(out, domain.Job{
			ID:             strings.TrimSpace(sj.ID),
			Title:          sj.Title,
			Company:        sj.Company,
			Description:    sj.Description,
			Requirements:   sj.Requirements,
			Location:       sj.Location,
			RemoteType:     domain.RemoteType(strings.ToLower(sj.RemoteType)),
			EmploymentType: sj.EmploymentType,
			Industry:       sj.Industry,
			Salary:         domain.SalaryRange{Min: sj.Salary.Min, Max: sj.Salary.Max, Currency: sj.Salary.Currency},
			PostedAt:       sj.PostedAt,
		})
	}
	return out, nil
}

// seedJobs upserts every posting in path and publishes one event per job so
// the consumer indexes them.
func seedJobs(ctx context.Context, path string, repo jobUpserter, pub jobPublisher) (int, error) {
	list, err := loadSeed(path)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(list))
	for _, j := range list {
		if err := repo.Upsert(ctx, j); err != nil {
			return 0, fmt.Errorf("op=seed.upsert id=%s: %w", j.ID, err)
		}
		ids = append(ids, j.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := pub.PublishJobIngested(ctx, ids...); err != nil {
		return 0, fmt.Errorf("op=seed.publish: %w", err)
	}
	return len(ids), nil
}
