// ===============================
// FILE: internal/services/mission_service.go
// ===============================

package services

import (
	"context"

	"careerquest/internal/contextutils"
	"careerquest/internal/events"
	"careerquest/internal/models"
	"careerquest/internal/repositories"
	"careerquest/internal/validation"

	"go.uber.org/zap"
)

// missionService implements MissionService
type missionService struct {
	store  repositories.Store
	badges *BadgeCatalog
	events events.EventBus
	logger *zap.Logger
}

// NewMissionService creates the mission aggregate service. bus may be nil.
func NewMissionService(
	store repositories.Store,
	badges *BadgeCatalog,
	bus events.EventBus,
	logger *zap.Logger,
) MissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if badges == nil {
		badges = NewBadgeCatalog(store.Badges(), nil, 0, logger)
	}

	return &missionService{
		store:  store,
		badges: badges,
		events: bus,
		logger: logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateMission inserts the mission row and its skills in one transaction
func (s *missionService) CreateMission(ctx context.Context, req *CreateMissionRequest) (*models.Mission, error) {
	return resultOf(s.createMission(ctx, req)).Surface(s.logger, "create_mission")
}

func (s *missionService) createMission(ctx context.Context, req *CreateMissionRequest) (*models.Mission, error) {
	if req == nil {
		req = &CreateMissionRequest{}
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create mission request", err)
	}

	if len(req.Tasks) > 0 {
		s.logger.Debug("Ignoring tasks in create mission request",
			zap.Int("task_count", len(req.Tasks)),
		)
	}

	actor := contextutils.GetUserID(ctx)
	mission := req.toMission(actor)

	err := s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Missions().Create(ctx, mission); err != nil {
			return err
		}
		return tx.Skills().BulkCreate(ctx, mission.ID, mission.RequiredSkills)
	})
	if err != nil {
		return nil, classify("create mission", err)
	}

	if mission.BadgeRewardID != nil {
		badge, err := s.store.Badges().GetByID(ctx, *mission.BadgeRewardID)
		if err != nil {
			s.logger.Warn("Failed to load badge reward of new mission",
				zap.String("mission_id", mission.ID),
				zap.Error(err),
			)
		}
		mission.BadgeReward = badge
	}

	s.publish(ctx, events.NewMissionCreatedEvent(mission, actor))

	s.logger.Info("Mission created",
		zap.String("mission_id", mission.ID),
		zap.String("created_by", mission.CreatedBy),
	)
	return mission, nil
}

// GetMissionByID returns the hydrated mission, or nil when it does not exist
func (s *missionService) GetMissionByID(ctx context.Context, id string) (*models.Mission, error) {
	return resultOf(s.getMission(ctx, s.store, id)).Surface(s.logger, "get_mission", zap.String("mission_id", id))
}

func (s *missionService) getMission(ctx context.Context, store repositories.Store, id string) (*models.Mission, error) {
	mission, err := store.Missions().GetByID(ctx, id)
	if err != nil {
		return nil, classify("get mission", err)
	}
	if mission == nil {
		return nil, nil
	}

	if err := s.hydrate(ctx, store, mission); err != nil {
		return nil, err
	}
	return mission, nil
}

// hydrate loads the owned collections of a mission
func (s *missionService) hydrate(ctx context.Context, store repositories.Store, mission *models.Mission) error {
	tasks, err := store.Tasks().ListByMission(ctx, mission.ID)
	if err != nil {
		return classify("list mission tasks", err)
	}
	skills, err := store.Skills().ListByMission(ctx, mission.ID)
	if err != nil {
		return classify("list mission skills", err)
	}

	if tasks == nil {
		tasks = []*models.Task{}
	}
	if skills == nil {
		skills = []models.Skill{}
	}
	mission.Tasks = tasks
	mission.RequiredSkills = skills
	return nil
}

// ListMissions returns every mission newest first, or an empty list when
// any read fails
func (s *missionService) ListMissions(ctx context.Context) []*models.Mission {
	return resultOf(s.listMissions(ctx)).Swallow(s.logger, "list_missions", []*models.Mission{})
}

func (s *missionService) listMissions(ctx context.Context) ([]*models.Mission, error) {
	missions, err := s.store.Missions().List(ctx)
	if err != nil {
		return nil, classify("list missions", err)
	}

	for _, mission := range missions {
		if err := s.hydrate(ctx, s.store, mission); err != nil {
			return nil, err
		}
	}

	if missions == nil {
		missions = []*models.Mission{}
	}
	return missions, nil
}

// UpdateMission applies a sparse patch and returns the re-read mission.
// Any failure is logged and reported as nil.
func (s *missionService) UpdateMission(ctx context.Context, id string, patch *models.MissionPatch) *models.Mission {
	return resultOf(s.updateMission(ctx, id, patch)).Swallow(s.logger, "update_mission", nil, zap.String("mission_id", id))
}

func (s *missionService) updateMission(ctx context.Context, id string, patch *models.MissionPatch) (*models.Mission, error) {
	if patch == nil {
		patch = &models.MissionPatch{}
	}
	if err := patch.Validate(); err != nil {
		return nil, NewValidationError("invalid mission update", err)
	}

	var updated *models.Mission
	err := s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		if err := lockMission(ctx, tx, id); err != nil {
			return err
		}

		if patch.HasScalarChanges() {
			if _, err := tx.Missions().Update(ctx, id, patch); err != nil {
				return classify("update mission", err)
			}
		}

		if patch.Tasks.Set {
			if err := replaceTasks(ctx, tx, id, patch.Tasks.Value); err != nil {
				return err
			}
		}

		if patch.RequiredSkills.Set {
			if _, err := tx.Skills().DeleteByMission(ctx, id); err != nil {
				return classify("delete mission skills", err)
			}
			if err := tx.Skills().BulkCreate(ctx, id, models.DedupeSkills(patch.RequiredSkills.Value)); err != nil {
				return classify("insert mission skills", err)
			}
		}

		var err error
		updated, err = s.getMission(ctx, tx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return EntityNotFoundError("mission", id)
		}
		return nil
	})
	if err != nil {
		return nil, classify("update mission", err)
	}

	s.publish(ctx, events.NewMissionUpdatedEvent(updated, contextutils.GetUserID(ctx)))
	return updated, nil
}

// replaceTasks swaps the whole task list of a mission
func replaceTasks(ctx context.Context, tx repositories.Store, missionID string, inputs []models.TaskInput) error {
	tasks, err := tasksFromInput(missionID, inputs)
	if err != nil {
		return NewInternalError("failed to generate task id")
	}

	if _, err := tx.Tasks().DeleteByMission(ctx, missionID); err != nil {
		return classify("delete mission tasks", err)
	}
	if err := tx.Tasks().BulkCreate(ctx, tasks); err != nil {
		return classify("insert mission tasks", err)
	}
	return nil
}

// DeleteMission removes the mission; tasks and skills go with it. A missing
// mission reports false.
func (s *missionService) DeleteMission(ctx context.Context, id string) bool {
	return resultOf(s.deleteMission(ctx, id)).Swallow(s.logger, "delete_mission", false, zap.String("mission_id", id))
}

func (s *missionService) deleteMission(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Missions().Delete(ctx, id)
	if err != nil {
		return false, classify("delete mission", err)
	}
	if !deleted {
		return false, EntityNotFoundError("mission", id)
	}

	s.publish(ctx, events.NewMissionDeletedEvent(id, contextutils.GetUserID(ctx)))
	return true, nil
}

// ===============================
// REFERENCE DATA AND ANALYTICS
// ===============================

// GetAvailableBadges returns the badge catalog ordered by name
func (s *missionService) GetAvailableBadges(ctx context.Context) []*models.Badge {
	return resultOf(s.badges.List(ctx)).Swallow(s.logger, "list_badges", []*models.Badge{})
}

// GetMissionStatistics summarises all mission statuses; zeros on failure
func (s *missionService) GetMissionStatistics(ctx context.Context) *models.MissionStatistics {
	return resultOf(s.missionStatistics(ctx)).Swallow(s.logger, "mission_statistics", &models.MissionStatistics{})
}

func (s *missionService) missionStatistics(ctx context.Context) (*models.MissionStatistics, error) {
	statuses, err := s.store.Missions().ListStatuses(ctx)
	if err != nil {
		return nil, classify("list mission statuses", err)
	}
	return ComputeMissionStatistics(statuses), nil
}

// ===============================
// HELPER METHODS
// ===============================

func (s *missionService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.events, s.logger, event)
}

// lockMission takes the mission row lock for the current transaction
func lockMission(ctx context.Context, tx repositories.Store, missionID string) error {
	found, err := tx.Missions().Lock(ctx, missionID)
	if err != nil {
		return classify("lock mission", err)
	}
	if !found {
		return EntityNotFoundError("mission", missionID)
	}
	return nil
}

// publishEvent hands an event to the bus without blocking the caller
func publishEvent(ctx context.Context, bus events.EventBus, logger *zap.Logger, event events.Event) {
	if bus == nil {
		return
	}
	if err := bus.PublishAsync(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
