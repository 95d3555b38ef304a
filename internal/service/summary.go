package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/buscapolo/fieldops/internal/model"
)

// MonthlySummary re-derives the month's aggregates from the full jobs
// collection on every call. Nothing incremental, nothing cached here: the
// numbers can never drift from the records.
func (s *JobService) MonthlySummary(ctx context.Context, year int, month time.Month) (*model.MonthlySummary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month out of range", ErrInvalidInput)
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.MonthlySummary{
		Year:       year,
		Month:      month,
		JobsByType: map[string]int{},
		TopClients: []model.ClientCount{},
		Jobs:       []model.Job{},
	}

	clientJobs := map[string]int{}
	for _, job := range all {
		if job.ScheduledAt.Year() != year || job.ScheduledAt.Month() != month {
			continue
		}
		summary.Jobs = append(summary.Jobs, job)
		summary.MaterialsTotal += job.MaterialsCost
		summary.LaborTotal += job.LaborCost
		summary.JobsByType[job.WorkType]++
		clientJobs[job.ClientName]++
	}

	summary.JobCount = len(summary.Jobs)
	summary.Total = summary.MaterialsTotal + summary.LaborTotal
	if summary.JobCount > 0 {
		summary.AvgMaterials = summary.MaterialsTotal / float64(summary.JobCount)
		summary.AvgLabor = summary.LaborTotal / float64(summary.JobCount)
	}

	for i := range summary.Jobs {
		job := summary.Jobs[i]
		if summary.MostExpensive == nil || job.Total > summary.MostExpensive.Total {
			summary.MostExpensive = &summary.Jobs[i]
		}
		if summary.LeastExpensive == nil || job.Total < summary.LeastExpensive.Total {
			summary.LeastExpensive = &summary.Jobs[i]
		}
	}

	for name, count := range clientJobs {
		summary.TopClients = append(summary.TopClients, model.ClientCount{ClientName: name, Jobs: count})
	}
	sort.Slice(summary.TopClients, func(i, j int) bool {
		if summary.TopClients[i].Jobs != summary.TopClients[j].Jobs {
			return summary.TopClients[i].Jobs > summary.TopClients[j].Jobs
		}
		return summary.TopClients[i].ClientName < summary.TopClients[j].ClientName
	})

	return summary, nil
}
