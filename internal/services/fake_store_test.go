package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"careerquest/internal/models"
	"careerquest/internal/repositories"
)

// fakeStore is an in-memory repositories.Store. Transactions snapshot the
// data and restore it when fn fails. faults maps "repo.Method" to the error
// that call returns.
type fakeStore struct {
	mu     *sync.Mutex
	data   *fakeData
	faults map[string]error
	writes *int
	inTx   bool
}

type fakeData struct {
	missions map[string]*models.Mission
	tasks    map[string]*models.Task
	skills   map[string][]models.Skill
	badges   map[string]*models.Badge
	seq      int
}

func newFakeStore() *fakeStore {
	writes := 0
	return &fakeStore{
		mu: &sync.Mutex{},
		data: &fakeData{
			missions: map[string]*models.Mission{},
			tasks:    map[string]*models.Task{},
			skills:   map[string][]models.Skill{},
			badges:   map[string]*models.Badge{},
		},
		faults: map[string]error{},
		writes: &writes,
	}
}

func (f *fakeStore) Missions() repositories.MissionRepository { return fakeMissions{f} }
func (f *fakeStore) Tasks() repositories.TaskRepository       { return fakeTasks{f} }
func (f *fakeStore) Skills() repositories.SkillRepository     { return fakeSkills{f} }
func (f *fakeStore) Badges() repositories.BadgeRepository     { return fakeBadges{f} }

func (f *fakeStore) WithTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if f.inTx {
		return fn(f)
	}
	if err := f.fault("store.Begin"); err != nil {
		return err
	}

	f.mu.Lock()
	snapshot := f.data.clone()
	f.mu.Unlock()

	tx := *f
	tx.inTx = true
	if err := fn(&tx); err != nil {
		f.mu.Lock()
		*f.data = *snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) fault(op string) error {
	return f.faults[op]
}

func (f *fakeStore) write() {
	*f.writes++
}

func (d *fakeData) clone() *fakeData {
	c := &fakeData{
		missions: make(map[string]*models.Mission, len(d.missions)),
		tasks:    make(map[string]*models.Task, len(d.tasks)),
		skills:   make(map[string][]models.Skill, len(d.skills)),
		badges:   d.badges,
		seq:      d.seq,
	}
	for id, m := range d.missions {
		cp := *m
		c.missions[id] = &cp
	}
	for id, t := range d.tasks {
		cp := *t
		c.tasks[id] = &cp
	}
	for id, s := range d.skills {
		c.skills[id] = append([]models.Skill(nil), s...)
	}
	return c
}

// ===============================
// TEST HELPERS
// ===============================

func (f *fakeStore) addBadge(b *models.Badge) {
	f.data.badges[b.ID] = b
}

func (f *fakeStore) addMission(title string, status models.MissionStatus) *models.Mission {
	f.data.seq++
	m := &models.Mission{
		ID:         fmt.Sprintf("mission-%d", f.data.seq),
		Title:      title,
		Category:   models.CategoryTechnical,
		Difficulty: models.DifficultyMedium,
		Points:     100,
		Status:     status,
		CreatedBy:  "anonymous",
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, f.data.seq, 0, time.UTC),
	}
	f.data.missions[m.ID] = m
	return m
}

func (f *fakeStore) addTask(missionID, id, description string, completed bool) *models.Task {
	index := 0
	for _, t := range f.data.tasks {
		if t.MissionID == missionID {
			index++
		}
	}
	t := &models.Task{ID: id, MissionID: missionID, Description: description, Completed: completed, OrderIndex: index}
	f.data.tasks[id] = t
	return t
}

func (f *fakeStore) orderedTaskIDs(missionID string) []string {
	var ids []string
	for _, t := range f.sortedTasks(missionID) {
		ids = append(ids, t.ID)
	}
	return ids
}

func (f *fakeStore) orderIndices(missionID string) []int {
	var indices []int
	for _, t := range f.sortedTasks(missionID) {
		indices = append(indices, t.OrderIndex)
	}
	return indices
}

func (f *fakeStore) sortedTasks(missionID string) []*models.Task {
	var tasks []*models.Task
	for _, t := range f.data.tasks {
		if t.MissionID == missionID {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].OrderIndex != tasks[j].OrderIndex {
			return tasks[i].OrderIndex < tasks[j].OrderIndex
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// ===============================
// MISSIONS
// ===============================

type fakeMissions struct{ f *fakeStore }

func (r fakeMissions) Create(ctx context.Context, mission *models.Mission) error {
	if err := r.f.fault("missions.Create"); err != nil {
		return err
	}
	r.f.write()
	r.f.data.seq++
	mission.ID = fmt.Sprintf("mission-%d", r.f.data.seq)
	mission.CreatedAt = time.Date(2024, 1, 1, 0, 0, r.f.data.seq, 0, time.UTC)

	cp := *mission
	cp.Tasks, cp.RequiredSkills, cp.BadgeReward = nil, nil, nil
	r.f.data.missions[mission.ID] = &cp
	return nil
}

func (r fakeMissions) get(id string) *models.Mission {
	m, ok := r.f.data.missions[id]
	if !ok {
		return nil
	}
	cp := *m
	if cp.BadgeRewardID != nil {
		if b, ok := r.f.data.badges[*cp.BadgeRewardID]; ok {
			badge := *b
			cp.BadgeReward = &badge
		}
	}
	return &cp
}

func (r fakeMissions) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	if err := r.f.fault("missions.GetByID"); err != nil {
		return nil, err
	}
	return r.get(id), nil
}

func (r fakeMissions) List(ctx context.Context) ([]*models.Mission, error) {
	if err := r.f.fault("missions.List"); err != nil {
		return nil, err
	}
	missions := make([]*models.Mission, 0, len(r.f.data.missions))
	for id := range r.f.data.missions {
		missions = append(missions, r.get(id))
	}
	sort.Slice(missions, func(i, j int) bool {
		return missions[i].CreatedAt.After(missions[j].CreatedAt)
	})
	return missions, nil
}

func (r fakeMissions) Lock(ctx context.Context, id string) (bool, error) {
	if err := r.f.fault("missions.Lock"); err != nil {
		return false, err
	}
	_, ok := r.f.data.missions[id]
	return ok, nil
}

func (r fakeMissions) Update(ctx context.Context, id string, patch *models.MissionPatch) (bool, error) {
	if err := r.f.fault("missions.Update"); err != nil {
		return false, err
	}
	m, ok := r.f.data.missions[id]
	if !ok {
		return false, nil
	}
	r.f.write()

	if patch.Title.HasValue() {
		m.Title = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Description.HasValue() {
		m.Description = patch.Description.Value
	}
	if patch.Category.HasValue() {
		m.Category = patch.Category.Value
	}
	if patch.Difficulty.HasValue() {
		m.Difficulty = patch.Difficulty.Value
	}
	if patch.Points.HasValue() {
		m.Points = patch.Points.Value
	}
	if patch.TimeLimit.Set {
		m.TimeLimit = nil
		if !patch.TimeLimit.Null {
			v := patch.TimeLimit.Value
			m.TimeLimit = &v
		}
	}
	if patch.Status.HasValue() {
		m.Status = patch.Status.Value
	}
	if patch.CompletionCriteria.HasValue() {
		m.CompletionCriteria = patch.CompletionCriteria.Value
	}
	if patch.BadgeRewardID.Set {
		m.BadgeRewardID = nil
		if !patch.BadgeRewardID.Null {
			v := patch.BadgeRewardID.Value
			if _, ok := r.f.data.badges[v]; !ok {
				return false, fmt.Errorf("pq: insert or update on table \"missions\" violates foreign key constraint")
			}
			m.BadgeRewardID = &v
		}
	}
	return true, nil
}

func (r fakeMissions) UpdateStatus(ctx context.Context, id string, status models.MissionStatus) (bool, error) {
	if err := r.f.fault("missions.UpdateStatus"); err != nil {
		return false, err
	}
	m, ok := r.f.data.missions[id]
	if !ok {
		return false, nil
	}
	r.f.write()
	m.Status = status
	return true, nil
}

func (r fakeMissions) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.f.fault("missions.Delete"); err != nil {
		return false, err
	}
	if _, ok := r.f.data.missions[id]; !ok {
		return false, nil
	}
	r.f.write()
	delete(r.f.data.missions, id)
	delete(r.f.data.skills, id)
	for taskID, t := range r.f.data.tasks {
		if t.MissionID == id {
			delete(r.f.data.tasks, taskID)
		}
	}
	return true, nil
}

func (r fakeMissions) ListStatuses(ctx context.Context) ([]models.MissionStatus, error) {
	if err := r.f.fault("missions.ListStatuses"); err != nil {
		return nil, err
	}
	statuses := make([]models.MissionStatus, 0, len(r.f.data.missions))
	for _, m := range r.f.data.missions {
		statuses = append(statuses, m.Status)
	}
	return statuses, nil
}

// ===============================
// TASKS
// ===============================

type fakeTasks struct{ f *fakeStore }

func (r fakeTasks) ListByMission(ctx context.Context, missionID string) ([]*models.Task, error) {
	if err := r.f.fault("tasks.ListByMission"); err != nil {
		return nil, err
	}
	tasks := r.f.sortedTasks(missionID)
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return tasks, nil
}

func (r fakeTasks) MaxOrderIndex(ctx context.Context, missionID string) (int, error) {
	if err := r.f.fault("tasks.MaxOrderIndex"); err != nil {
		return 0, err
	}
	max := -1
	for _, t := range r.f.data.tasks {
		if t.MissionID == missionID && t.OrderIndex > max {
			max = t.OrderIndex
		}
	}
	return max, nil
}

func (r fakeTasks) insert(task *models.Task) error {
	if _, ok := r.f.data.missions[task.MissionID]; !ok {
		return fmt.Errorf("pq: insert on table \"mission_tasks\" violates foreign key constraint")
	}
	if _, ok := r.f.data.tasks[task.ID]; ok {
		return fmt.Errorf("pq: duplicate key value violates unique constraint \"mission_tasks_pkey\"")
	}
	cp := *task
	r.f.data.tasks[task.ID] = &cp
	return nil
}

func (r fakeTasks) Create(ctx context.Context, task *models.Task) error {
	if err := r.f.fault("tasks.Create"); err != nil {
		return err
	}
	r.f.write()
	return r.insert(task)
}

func (r fakeTasks) BulkCreate(ctx context.Context, tasks []*models.Task) error {
	if err := r.f.fault("tasks.BulkCreate"); err != nil {
		return err
	}
	r.f.write()
	for _, t := range tasks {
		if err := r.insert(t); err != nil {
			return err
		}
	}
	return nil
}

func (r fakeTasks) find(missionID, taskID string) *models.Task {
	t, ok := r.f.data.tasks[taskID]
	if !ok || t.MissionID != missionID {
		return nil
	}
	return t
}

func (r fakeTasks) Update(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) (*models.Task, error) {
	if err := r.f.fault("tasks.Update"); err != nil {
		return nil, err
	}
	t := r.find(missionID, taskID)
	if t == nil {
		return nil, nil
	}
	if patch.Description.HasValue() {
		r.f.write()
		t.Description = strings.TrimSpace(patch.Description.Value)
	}
	if patch.Completed.HasValue() {
		r.f.write()
		t.Completed = patch.Completed.Value
	}
	cp := *t
	return &cp, nil
}

func (r fakeTasks) ToggleCompleted(ctx context.Context, missionID, taskID string) (*models.Task, error) {
	if err := r.f.fault("tasks.ToggleCompleted"); err != nil {
		return nil, err
	}
	t := r.find(missionID, taskID)
	if t == nil {
		return nil, nil
	}
	r.f.write()
	t.Completed = !t.Completed
	cp := *t
	return &cp, nil
}

func (r fakeTasks) SetOrderIndex(ctx context.Context, missionID, taskID string, index int) (bool, error) {
	if err := r.f.fault("tasks.SetOrderIndex"); err != nil {
		return false, err
	}
	t := r.find(missionID, taskID)
	if t == nil {
		return false, nil
	}
	r.f.write()
	t.OrderIndex = index
	return true, nil
}

func (r fakeTasks) Delete(ctx context.Context, missionID, taskID string) (bool, error) {
	if err := r.f.fault("tasks.Delete"); err != nil {
		return false, err
	}
	if r.find(missionID, taskID) == nil {
		return false, nil
	}
	r.f.write()
	delete(r.f.data.tasks, taskID)
	return true, nil
}

func (r fakeTasks) DeleteByMission(ctx context.Context, missionID string) (int64, error) {
	if err := r.f.fault("tasks.DeleteByMission"); err != nil {
		return 0, err
	}
	r.f.write()
	var n int64
	for id, t := range r.f.data.tasks {
		if t.MissionID == missionID {
			delete(r.f.data.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r fakeTasks) CompletionFlags(ctx context.Context, missionID string) ([]bool, error) {
	if err := r.f.fault("tasks.CompletionFlags"); err != nil {
		return nil, err
	}
	var flags []bool
	for _, t := range r.f.sortedTasks(missionID) {
		flags = append(flags, t.Completed)
	}
	return flags, nil
}

// ===============================
// REFERENCE DATA
// ===============================

type fakeSkills struct{ f *fakeStore }

func (r fakeSkills) ListByMission(ctx context.Context, missionID string) ([]models.Skill, error) {
	if err := r.f.fault("skills.ListByMission"); err != nil {
		return nil, err
	}
	return append([]models.Skill{}, r.f.data.skills[missionID]...), nil
}

func (r fakeSkills) BulkCreate(ctx context.Context, missionID string, skills []models.Skill) error {
	if err := r.f.fault("skills.BulkCreate"); err != nil {
		return err
	}
	if len(skills) == 0 {
		return nil
	}
	r.f.write()
	r.f.data.skills[missionID] = append(r.f.data.skills[missionID], skills...)
	return nil
}

func (r fakeSkills) DeleteByMission(ctx context.Context, missionID string) (int64, error) {
	if err := r.f.fault("skills.DeleteByMission"); err != nil {
		return 0, err
	}
	r.f.write()
	n := int64(len(r.f.data.skills[missionID]))
	delete(r.f.data.skills, missionID)
	return n, nil
}

type fakeBadges struct{ f *fakeStore }

func (r fakeBadges) List(ctx context.Context) ([]*models.Badge, error) {
	if err := r.f.fault("badges.List"); err != nil {
		return nil, err
	}
	badges := make([]*models.Badge, 0, len(r.f.data.badges))
	for _, b := range r.f.data.badges {
		cp := *b
		badges = append(badges, &cp)
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].Name < badges[j].Name })
	return badges, nil
}

func (r fakeBadges) GetByID(ctx context.Context, id string) (*models.Badge, error) {
	if err := r.f.fault("badges.GetByID"); err != nil {
		return nil, err
	}
	b, ok := r.f.data.badges[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

var _ repositories.Store = (*fakeStore)(nil)
