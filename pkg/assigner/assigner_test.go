package assigner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/matcher"
	"github.com/paigong/paigong/pkg/model"
)

// mockStore 内存存储桩，记录全部写入调用
type mockStore struct {
	consultants  []*model.Consultant
	requirements []*model.Requirement
	assignments  map[uuid.UUID][]model.AssignmentWithSchedule
	schedules    []*model.Schedule

	createdSchedules   []*model.Schedule
	createdAssignments []*model.Assignment
	createdLogs        []*model.AutoAssignLog
	savedRecs          []model.SchedulingRecommendation
}

func newMockStore() *mockStore {
	return &mockStore{assignments: make(map[uuid.UUID][]model.AssignmentWithSchedule)}
}

func (m *mockStore) GetConsultantsWithFullDetails(ctx context.Context) ([]*model.Consultant, error) {
	return m.consultants, nil
}

func (m *mockStore) GetProjectRequirementsWithContext(ctx context.Context, projectID uuid.UUID) ([]*model.Requirement, error) {
	return m.requirements, nil
}

func (m *mockStore) GetConsultantSchedules(ctx context.Context, consultantID uuid.UUID) ([]*model.Schedule, error) {
	return nil, nil
}

func (m *mockStore) GetConsultantAssignments(ctx context.Context, consultantID uuid.UUID) ([]model.AssignmentWithSchedule, error) {
	return m.assignments[consultantID], nil
}

func (m *mockStore) GetProjectSchedules(ctx context.Context, projectID uuid.UUID) ([]*model.Schedule, error) {
	return m.schedules, nil
}

func (m *mockStore) CreateProjectSchedule(ctx context.Context, schedule *model.Schedule) error {
	m.createdSchedules = append(m.createdSchedules, schedule)
	return nil
}

func (m *mockStore) CreateScheduleAssignment(ctx context.Context, assignment *model.Assignment) error {
	m.createdAssignments = append(m.createdAssignments, assignment)
	return nil
}

func (m *mockStore) SaveSchedulingRecommendations(ctx context.Context, records []model.SchedulingRecommendation) error {
	m.savedRecs = append(m.savedRecs, records...)
	return nil
}

func (m *mockStore) CreateAutoAssignmentLog(ctx context.Context, entry *model.AutoAssignLog) error {
	m.createdLogs = append(m.createdLogs, entry)
	return nil
}

func readyConsultant(name string) *model.Consultant {
	return &model.Consultant{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Name:        name,
		IsAvailable: true,
		IsOnboarded: true,
		EMRSystems:  []string{"Epic"},
		EMRExperience: []model.EMRExperience{
			{System: "Epic", Proficiency: model.ProficiencyAdvanced, YearsExperience: 3},
		},
	}
}

func newRequirement(projectID uuid.UUID, date string, needed int) *model.Requirement {
	return &model.Requirement{
		ID:                uuid.New(),
		ProjectID:         projectID,
		HospitalEMR:       "Epic",
		ConsultantsNeeded: needed,
		Dates:             []model.RequirementDate{{Date: date, ShiftType: model.ShiftDay}},
	}
}

func newAssigner(store *mockStore) *Assigner {
	return New(store, matcher.NewEngine(store))
}

func TestAutoAssign_FillsRequirement(t *testing.T) {
	projectID := uuid.New()
	store := newMockStore()
	store.consultants = []*model.Consultant{readyConsultant("甲"), readyConsultant("乙"), readyConsultant("丙")}
	store.requirements = []*model.Requirement{newRequirement(projectID, "2026-09-01", 2)}

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}

	if result.AssignmentsMade != 2 {
		t.Errorf("应产生2条指派，实际 %d", result.AssignmentsMade)
	}
	if len(store.createdAssignments) != 2 {
		t.Errorf("应写入2条指派，实际 %d", len(store.createdAssignments))
	}
	// 同日期同班次应复用一个排班容器
	if len(store.createdSchedules) != 1 {
		t.Errorf("应只创建1个排班容器，实际 %d", len(store.createdSchedules))
	}
	// 按排名指派：两名入选者为不同顾问
	if result.Assignments[0].ConsultantID == result.Assignments[1].ConsultantID {
		t.Error("同一需求不应重复指派同一顾问")
	}
}

func TestAutoAssign_SkipsFilledRequirement(t *testing.T) {
	projectID := uuid.New()
	store := newMockStore()
	c := readyConsultant("甲")
	store.consultants = []*model.Consultant{c}

	req := newRequirement(projectID, "2026-09-01", 1)
	req.AlreadyAssignedConsultantIDs = []uuid.UUID{uuid.New()}
	store.requirements = []*model.Requirement{req}

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}
	if result.AssignmentsMade != 0 {
		t.Errorf("已满员需求不应再指派，实际 %d", result.AssignmentsMade)
	}
	if result.TotalEvaluated != 0 {
		t.Errorf("已满员需求不应评估候选人，实际 %d", result.TotalEvaluated)
	}
}

func TestAutoAssign_PerConsultantCap(t *testing.T) {
	projectID := uuid.New()
	store := newMockStore()
	store.consultants = []*model.Consultant{readyConsultant("独苗")}

	// 3个需求只有1名顾问，上限2
	store.requirements = []*model.Requirement{
		newRequirement(projectID, "2026-09-01", 1),
		newRequirement(projectID, "2026-09-02", 1),
		newRequirement(projectID, "2026-09-03", 1),
	}

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{MaxPerConsultant: 2})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}
	if result.AssignmentsMade != 2 {
		t.Errorf("单人上限2应只产生2条指派，实际 %d", result.AssignmentsMade)
	}
	if len(result.Skipped) == 0 {
		t.Error("第3个需求应记录跳过原因")
	}
}

func TestAutoAssign_SameProjectMultipleShifts(t *testing.T) {
	projectID := uuid.New()
	store := newMockStore()
	store.consultants = []*model.Consultant{readyConsultant("甲")}

	// 同项目同日两个需求：允许同一顾问覆盖
	store.requirements = []*model.Requirement{
		newRequirement(projectID, "2026-09-01", 1),
		newRequirement(projectID, "2026-09-01", 1),
	}
	store.requirements[1].Dates[0].ShiftType = model.ShiftNight

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}
	if result.AssignmentsMade != 2 {
		t.Errorf("同项目多班次应都指派成功，实际 %d", result.AssignmentsMade)
	}
	if result.ConflictsFound != 0 {
		t.Errorf("同项目内不应算冲突，实际 %d", result.ConflictsFound)
	}
}

func TestAutoAssign_CrossProjectConflict(t *testing.T) {
	projectID := uuid.New()
	otherProject := uuid.New()
	store := newMockStore()

	busy := readyConsultant("忙碌顾问")
	free := readyConsultant("空闲顾问")
	store.consultants = []*model.Consultant{busy, free}
	store.assignments[busy.ID] = []model.AssignmentWithSchedule{
		{
			ScheduleProjectID: otherProject,
			ScheduleDate:      "2026-09-01",
			ScheduleStatus:    model.ScheduleStatusConfirmed,
		},
	}

	store.requirements = []*model.Requirement{newRequirement(projectID, "2026-09-01", 2)}

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}

	// 忙碌顾问在硬约束阶段即不合格，只有空闲顾问入选
	if result.AssignmentsMade != 1 {
		t.Errorf("应只指派空闲顾问，实际 %d", result.AssignmentsMade)
	}
	if result.Assignments[0].ConsultantID != free.ID {
		t.Error("入选者应为空闲顾问")
	}
	if result.TotalEligible != 1 {
		t.Errorf("合格人数应为1，实际 %d", result.TotalEligible)
	}
}

func TestAutoAssign_DryRunMakesNoWrites(t *testing.T) {
	projectID := uuid.New()

	build := func() *mockStore {
		store := newMockStore()
		store.consultants = []*model.Consultant{readyConsultant("甲"), readyConsultant("乙")}
		store.requirements = []*model.Requirement{
			newRequirement(projectID, "2026-09-01", 1),
			newRequirement(projectID, "2026-09-02", 2),
		}
		return store
	}

	dryStore := build()
	dry, err := newAssigner(dryStore).AutoAssign(context.Background(), projectID, Options{DryRun: true})
	if err != nil {
		t.Fatalf("试运行失败: %v", err)
	}

	liveStore := build()
	live, err := newAssigner(liveStore).AutoAssign(context.Background(), projectID, Options{})
	if err != nil {
		t.Fatalf("真实运行失败: %v", err)
	}

	// 试运行零写入
	if len(dryStore.createdSchedules) != 0 || len(dryStore.createdAssignments) != 0 || len(dryStore.createdLogs) != 0 {
		t.Errorf("试运行不应有任何写入: schedules=%d assignments=%d logs=%d",
			len(dryStore.createdSchedules), len(dryStore.createdAssignments), len(dryStore.createdLogs))
	}
	if !dry.DryRun {
		t.Error("结果应标记试运行")
	}

	// 决策与真实运行一致
	if dry.AssignmentsMade != live.AssignmentsMade {
		t.Errorf("试运行指派数 %d 应与真实运行 %d 一致", dry.AssignmentsMade, live.AssignmentsMade)
	}
	if dry.ConflictsFound != live.ConflictsFound {
		t.Errorf("试运行冲突数 %d 应与真实运行 %d 一致", dry.ConflictsFound, live.ConflictsFound)
	}
	if dry.TotalEvaluated != live.TotalEvaluated || dry.TotalEligible != live.TotalEligible {
		t.Error("试运行评估计数应与真实运行一致")
	}
	for i := range dry.Assignments {
		if dry.Assignments[i].ConsultantID != live.Assignments[i].ConsultantID {
			t.Error("试运行入选顾问应与真实运行一致")
		}
	}
}

func TestAutoAssign_RequirementSubset(t *testing.T) {
	projectID := uuid.New()
	store := newMockStore()
	store.consultants = []*model.Consultant{readyConsultant("甲")}

	target := newRequirement(projectID, "2026-09-01", 1)
	other := newRequirement(projectID, "2026-09-02", 1)
	store.requirements = []*model.Requirement{target, other}

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{
		RequirementIDs: []uuid.UUID{target.ID},
	})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}
	if result.AssignmentsMade != 1 {
		t.Fatalf("应只处理目标需求，实际指派 %d", result.AssignmentsMade)
	}
	if result.Assignments[0].RequirementID != target.ID {
		t.Error("指派应属于目标需求")
	}
}

func TestAutoAssign_ReusesExistingSchedule(t *testing.T) {
	projectID := uuid.New()
	store := newMockStore()
	store.consultants = []*model.Consultant{readyConsultant("甲")}
	store.requirements = []*model.Requirement{newRequirement(projectID, "2026-09-01", 1)}

	existing := &model.Schedule{
		BaseModel: model.NewBaseModel(),
		ProjectID: projectID,
		Date:      "2026-09-01",
		ShiftType: model.ShiftDay,
		Status:    model.ScheduleStatusPlanned,
	}
	store.schedules = []*model.Schedule{existing}

	result, err := newAssigner(store).AutoAssign(context.Background(), projectID, Options{})
	if err != nil {
		t.Fatalf("自动指派失败: %v", err)
	}
	if len(store.createdSchedules) != 0 {
		t.Errorf("已有容器时不应新建，实际新建 %d", len(store.createdSchedules))
	}
	if result.Assignments[0].ScheduleID != existing.ID {
		t.Error("指派应挂在既有容器下")
	}
}

func TestAutoAssign_InvalidWeights(t *testing.T) {
	store := newMockStore()
	engine := matcher.NewEngine(store).WithWeights(matcher.Weights{})

	_, err := New(store, engine).AutoAssign(context.Background(), uuid.New(), Options{})
	if err == nil {
		t.Fatal("全零权重应报错")
	}
}
