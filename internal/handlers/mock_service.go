package handlers

import (
	"context"
	"time"

	"shade_control/internal/models"
	"shade_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	token       string
	tokenErr    error
	claims      *service.TokenClaims
	parseErr    error
	user        *models.User
	userErr     error
	createID    int
	createErr   error
	users       []models.User
	listErr     error
	lastParsed  string
	lastEmail   string
	lastCreated service.CreateUserParams
}

func (m *mockAuth) GenerateToken(email, password string) (string, error) {
	m.lastEmail = email
	return m.token, m.tokenErr
}
func (m *mockAuth) ParseToken(accessToken string) (*service.TokenClaims, error) {
	m.lastParsed = accessToken
	return m.claims, m.parseErr
}
func (m *mockAuth) GetUser(id int) (*models.User, error) { return m.user, m.userErr }
func (m *mockAuth) CreateUser(p service.CreateUserParams) (int, error) {
	m.lastCreated = p
	return m.createID, m.createErr
}
func (m *mockAuth) ListUsers() ([]models.User, error) { return m.users, m.listErr }

type mockScheduler struct {
	status     service.SchedulerStatus
	settings   service.SchedulerSettings
	updateErr  error
	ranAt      time.Time
	runErr     error
	lastPatch  service.SettingsPatch
	startCalls int
	stopCalls  int
	runCalls   int
}

func (m *mockScheduler) Start() { m.startCalls++ }
func (m *mockScheduler) Stop()  { m.stopCalls++ }
func (m *mockScheduler) RunNow(ctx context.Context) (time.Time, error) {
	m.runCalls++
	return m.ranAt, m.runErr
}
func (m *mockScheduler) Status() service.SchedulerStatus { return m.status }
func (m *mockScheduler) UpdateSettings(p service.SettingsPatch) (service.SchedulerSettings, error) {
	m.lastPatch = p
	if m.updateErr != nil {
		return service.SchedulerSettings{}, m.updateErr
	}
	return m.settings, nil
}

type mockSchedules struct {
	schedules []models.Schedule
	listErr   error
	createID  int
	createErr error
	activeErr error
	deleteErr error

	lastCreate     service.CreateScheduleParams
	lastSetID      int
	lastSetActive  bool
	lastDeletedID  int
	setActiveCalls int
}

func (m *mockSchedules) ListByShade(ctx context.Context, shadeID int) ([]models.Schedule, error) {
	return m.schedules, m.listErr
}
func (m *mockSchedules) Create(ctx context.Context, p service.CreateScheduleParams) (int, error) {
	m.lastCreate = p
	return m.createID, m.createErr
}
func (m *mockSchedules) SetActive(ctx context.Context, id int, active bool) error {
	m.setActiveCalls++
	m.lastSetID, m.lastSetActive = id, active
	return m.activeErr
}
func (m *mockSchedules) Delete(ctx context.Context, id int) error {
	m.lastDeletedID = id
	return m.deleteErr
}

type mockShades struct {
	shades      []models.Shade
	listErr     error
	createID    int
	createErr   error
	overrideID  int
	overrideErr error
	overrides   []models.ManualOverride

	lastCreate   service.CreateShadeParams
	lastOverride service.OverrideParams
}

func (m *mockShades) List(ctx context.Context) ([]models.Shade, error) { return m.shades, m.listErr }
func (m *mockShades) ListByArea(ctx context.Context, areaID int) ([]models.Shade, error) {
	return m.shades, m.listErr
}
func (m *mockShades) Create(ctx context.Context, p service.CreateShadeParams) (int, error) {
	m.lastCreate = p
	return m.createID, m.createErr
}
func (m *mockShades) Override(ctx context.Context, p service.OverrideParams) (int, error) {
	m.lastOverride = p
	return m.overrideID, m.overrideErr
}
func (m *mockShades) ActiveOverrides(ctx context.Context) ([]models.ManualOverride, error) {
	return m.overrides, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// authedServices returns a Service whose auth mock accepts any bearer token
// and reports the given role.
func authedServices(role string) *service.Service {
	return &service.Service{
		Authorization: &mockAuth{claims: &service.TokenClaims{UserID: 1, Email: "op@example.com", Role: role}},
	}
}
