package services

import (
	"careerquest/internal/models"
)

// ComputeMissionStatistics counts statuses. The completion rate is a
// percentage and is 0 for an empty list.
func ComputeMissionStatistics(statuses []models.MissionStatus) *models.MissionStatistics {
	stats := &models.MissionStatistics{TotalMissions: len(statuses)}

	for _, status := range statuses {
		switch status {
		case models.StatusCompleted:
			stats.CompletedMissions++
		case models.StatusInProgress:
			stats.InProgressMissions++
		case models.StatusNotStarted:
			stats.NotStartedMissions++
		}
	}

	if stats.TotalMissions > 0 {
		stats.AverageCompletionRate = float64(stats.CompletedMissions) / float64(stats.TotalMissions) * 100
	}

	return stats
}

// DeriveMissionStatus maps task completion flags to a mission status:
// completed when every flag is set, in-progress otherwise.
func DeriveMissionStatus(completed []bool) models.MissionStatus {
	for _, done := range completed {
		if !done {
			return models.StatusInProgress
		}
	}
	return models.StatusCompleted
}
