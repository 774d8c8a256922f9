package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/repository"
	"example.com/cost-signal/backend/internal/scheduler"
	"example.com/cost-signal/backend/internal/signals"
)

var testWeek = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

type testValidator struct {
	validator *validator.Validate
}

func (v testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type fakeSignals struct {
	latest  *models.WeeklySignal
	recent  []models.WeeklySignal
	limit   int
	failing bool
}

func (f *fakeSignals) Latest(context.Context) (models.WeeklySignal, error) {
	if f.failing {
		return models.WeeklySignal{}, errors.New("db down")
	}
	if f.latest == nil {
		return models.WeeklySignal{}, repository.ErrNotFound
	}
	return *f.latest, nil
}

func (f *fakeSignals) ListRecent(_ context.Context, limit int) ([]models.WeeklySignal, error) {
	f.limit = limit
	return f.recent, nil
}

type fakeReadings struct {
	readings  []models.IndicatorReading
	indicator *models.IndicatorType
	weeks     int
}

func (f *fakeReadings) ListByWeek(_ context.Context, week time.Time) ([]models.IndicatorReading, error) {
	out := make([]models.IndicatorReading, 0)
	for _, reading := range f.readings {
		if reading.WeekStart.Equal(week) {
			out = append(out, reading)
		}
	}
	return out, nil
}

func (f *fakeReadings) ListHistory(_ context.Context, indicator *models.IndicatorType, weeks int) ([]models.IndicatorReading, error) {
	f.indicator = indicator
	f.weeks = weeks
	return f.readings, nil
}

type fakeUsers struct {
	users map[uuid.UUID]models.User
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (f fakeUsers) Count(context.Context) (int, error) {
	return len(f.users), nil
}

func (f fakeUsers) CountByPlan(context.Context) ([]repository.PlanCount, error) {
	counts := map[models.Plan]int{}
	for _, user := range f.users {
		counts[user.Plan]++
	}
	return []repository.PlanCount{
		{Plan: models.PlanFree, Count: counts[models.PlanFree]},
		{Plan: models.PlanPremium, Count: counts[models.PlanPremium]},
	}, nil
}

type fakeSpending struct {
	patterns map[uuid.UUID]models.SpendingPattern
}

func (f *fakeSpending) GetByUser(_ context.Context, userID uuid.UUID) (models.SpendingPattern, error) {
	pattern, ok := f.patterns[userID]
	if !ok {
		return models.SpendingPattern{}, repository.ErrNotFound
	}
	return pattern, nil
}

func (f *fakeSpending) Upsert(_ context.Context, pattern models.SpendingPattern) (models.SpendingPattern, error) {
	if f.patterns == nil {
		f.patterns = map[uuid.UUID]models.SpendingPattern{}
	}
	pattern.UpdatedAt = testWeek
	f.patterns[pattern.UserID] = pattern
	return pattern, nil
}

type fakeRunner struct {
	runErr     error
	recomputed time.Time
	ran        time.Time
}

func (f *fakeRunner) CurrentWeek() time.Time { return testWeek }

func (f *fakeRunner) RunWeek(_ context.Context, week time.Time) (signals.WeekResult, error) {
	f.ran = week
	if f.runErr != nil {
		return signals.WeekResult{}, f.runErr
	}
	return signals.WeekResult{Signal: models.WeeklySignal{WeekStart: week, OverallStatus: models.OverallOK}}, nil
}

func (f *fakeRunner) Recompute(_ context.Context, week time.Time) (signals.WeekResult, error) {
	f.recomputed = week
	if f.runErr != nil {
		return signals.WeekResult{}, f.runErr
	}
	return signals.WeekResult{Signal: models.WeeklySignal{WeekStart: week, OverallStatus: models.OverallCaution}}, nil
}

type fakeUsage struct{}

func (fakeUsage) UsageStats(_ context.Context, weeks int) (repository.UsageStats, error) {
	return repository.UsageStats{Signals: weeks, RecentWeeks: []repository.WeeklyStatusCount{}}, nil
}

type fixedStreams int

func (f fixedStreams) SubscriberCount() int { return int(f) }

type fixedStatus struct{}

func (fixedStatus) Status() scheduler.Status {
	return scheduler.Status{Schedule: "0 14 * * 1", RunCount: 3}
}

func ptr[T any](v T) *T {
	return &v
}

func newContext(method, target string, body string, userID *uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = testValidator{validator: validator.New()}

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set(auth.ContextUserIDKey, *userID)
	}
	return c, rec
}

func weekReadings() []models.IndicatorReading {
	return []models.IndicatorReading{
		{WeekStart: testWeek, IndicatorType: models.IndicatorGas, Value: 3.80, PreviousValue: ptr(3.50), ChangePercent: ptr(8.57), Status: models.StatusRisk},
		{WeekStart: testWeek, IndicatorType: models.IndicatorCPI, Value: 310.5, PreviousValue: ptr(308.3), ChangePercent: ptr(0.71), Status: models.StatusRisk},
		{WeekStart: testWeek, IndicatorType: models.IndicatorInterestRate, Value: 5.33, PreviousValue: ptr(5.33), ChangePercent: ptr(0.0), Status: models.StatusOK},
		{WeekStart: testWeek, IndicatorType: models.IndicatorUnemployment, Value: 3.9, PreviousValue: ptr(3.8), ChangePercent: ptr(2.63), Status: models.StatusOK},
	}
}

func signalFixture() (*SignalHandler, uuid.UUID, uuid.UUID) {
	freeID := uuid.New()
	premiumID := uuid.New()
	explanation := "Gas and CPI moved up."

	handler := NewSignalHandler(
		&fakeSignals{latest: &models.WeeklySignal{WeekStart: testWeek, OverallStatus: models.OverallCaution, RiskCount: 2, Explanation: &explanation}},
		&fakeReadings{readings: weekReadings()},
		fakeUsers{users: map[uuid.UUID]models.User{
			freeID:    {ID: freeID, Email: "free@example.com", Plan: models.PlanFree},
			premiumID: {ID: premiumID, Email: "premium@example.com", Plan: models.PlanPremium},
		}},
		&fakeSpending{},
		nil,
	)
	return handler, freeID, premiumID
}

// TestCurrentSignalFreeUser проверяет, что бесплатный пользователь получает upgrade_required без анализа.
func TestCurrentSignalFreeUser(t *testing.T) {
	handler, freeID, _ := signalFixture()

	c, rec := newContext(http.MethodGet, "/api/v1/signals/current", "", &freeID)
	if err := handler.Current(c); err != nil {
		t.Fatalf("current: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response["upgrade_required"] != true {
		t.Fatalf("expected upgrade_required, got %v", response["upgrade_required"])
	}
	if _, ok := response["impact_analysis"]; ok {
		t.Fatal("expected no impact_analysis for free user")
	}
	if response["week_start"] != "2024-03-11" || response["overall_status"] != "caution" {
		t.Fatalf("unexpected signal %v", response)
	}
	if indicators, ok := response["indicators"].([]interface{}); !ok || len(indicators) != 4 {
		t.Fatalf("expected 4 indicators, got %v", response["indicators"])
	}
}

// TestCurrentSignalPremiumUser проверяет анализ влияния для premium-пользователя с профилем.
func TestCurrentSignalPremiumUser(t *testing.T) {
	handler, _, premiumID := signalFixture()
	handler.Spending = &fakeSpending{patterns: map[uuid.UUID]models.SpendingPattern{
		premiumID: {UserID: premiumID, GasFrequency: models.GasFrequencyWeekly, FoodRatio: models.FoodRatioMedium},
	}}

	c, rec := newContext(http.MethodGet, "/api/v1/signals/current", "", &premiumID)
	if err := handler.Current(c); err != nil {
		t.Fatalf("current: %v", err)
	}

	var response CurrentSignalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.UpgradeRequired {
		t.Fatal("expected no upgrade_required for premium user")
	}
	if response.ImpactAnalysis == nil {
		t.Fatal("expected impact_analysis")
	}
	if len(response.ImpactAnalysis.Breakdown) != 4 {
		t.Fatalf("expected 4 breakdown entries, got %d", len(response.ImpactAnalysis.Breakdown))
	}
	if response.ImpactAnalysis.TotalWeeklyChange <= 0 {
		t.Fatalf("expected positive weekly change, got %v", response.ImpactAnalysis.TotalWeeklyChange)
	}
}

// TestCurrentSignalPremiumWithoutPattern проверяет подсказку заполнить профиль.
func TestCurrentSignalPremiumWithoutPattern(t *testing.T) {
	handler, _, premiumID := signalFixture()

	c, rec := newContext(http.MethodGet, "/api/v1/signals/current", "", &premiumID)
	if err := handler.Current(c); err != nil {
		t.Fatalf("current: %v", err)
	}

	var response CurrentSignalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.UpgradeRequired || response.ImpactAnalysis != nil || !response.SpendingPatternRequired {
		t.Fatalf("unexpected response %+v", response)
	}
}

// TestCurrentSignalUnknownUserIsFree проверяет, что пользователь без записи считается бесплатным.
func TestCurrentSignalUnknownUserIsFree(t *testing.T) {
	handler, _, _ := signalFixture()
	stranger := uuid.New()

	c, rec := newContext(http.MethodGet, "/api/v1/signals/current", "", &stranger)
	if err := handler.Current(c); err != nil {
		t.Fatalf("current: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"upgrade_required":true`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

// TestCurrentSignalErrors проверяет ответы без сигнала, без токена и при сбое хранилища.
func TestCurrentSignalErrors(t *testing.T) {
	handler, freeID, _ := signalFixture()

	c, rec := newContext(http.MethodGet, "/api/v1/signals/current", "", nil)
	_ = handler.Current(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	handler.Signals = &fakeSignals{}
	c, rec = newContext(http.MethodGet, "/api/v1/signals/current", "", &freeID)
	_ = handler.Current(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	handler.Signals = &fakeSignals{failing: true}
	c, rec = newContext(http.MethodGet, "/api/v1/signals/current", "", &freeID)
	_ = handler.Current(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

// TestSignalHistoryWeeks проверяет значение по умолчанию, ограничение и ошибку параметра weeks.
func TestSignalHistoryWeeks(t *testing.T) {
	store := &fakeSignals{recent: []models.WeeklySignal{}}
	handler := NewSignalHandler(store, &fakeReadings{}, fakeUsers{}, &fakeSpending{}, nil)

	cases := []struct {
		query     string
		wantCode  int
		wantLimit int
	}{
		{query: "", wantCode: http.StatusOK, wantLimit: 12},
		{query: "?weeks=4", wantCode: http.StatusOK, wantLimit: 4},
		{query: "?weeks=500", wantCode: http.StatusOK, wantLimit: 52},
		{query: "?weeks=0", wantCode: http.StatusBadRequest},
		{query: "?weeks=abc", wantCode: http.StatusBadRequest},
	}

	for _, tc := range cases {
		store.limit = 0
		c, rec := newContext(http.MethodGet, "/api/v1/signals/history"+tc.query, "", nil)
		if err := handler.History(c); err != nil {
			t.Fatalf("%q: %v", tc.query, err)
		}
		if rec.Code != tc.wantCode {
			t.Fatalf("%q: expected %d, got %d", tc.query, tc.wantCode, rec.Code)
		}
		if tc.wantLimit != 0 && store.limit != tc.wantLimit {
			t.Fatalf("%q: expected limit %d, got %d", tc.query, tc.wantLimit, store.limit)
		}
	}
}

// TestIndicatorHistory проверяет фильтр по типу индикатора.
func TestIndicatorHistory(t *testing.T) {
	readings := &fakeReadings{readings: weekReadings()}
	handler := NewIndicatorHandler(readings)

	c, rec := newContext(http.MethodGet, "/api/v1/indicators/history?type=GAS&weeks=6", "", nil)
	if err := handler.History(c); err != nil {
		t.Fatalf("history: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if readings.indicator == nil || *readings.indicator != models.IndicatorGas || readings.weeks != 6 {
		t.Fatalf("unexpected query %v %d", readings.indicator, readings.weeks)
	}

	c, rec = newContext(http.MethodGet, "/api/v1/indicators/history?type=oil", "", nil)
	_ = handler.History(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
	}
}

// TestExportCSV проверяет заголовок и пустые ячейки для отсутствующих значений.
func TestExportCSV(t *testing.T) {
	readings := weekReadings()
	readings[0].PreviousValue = nil
	readings[0].ChangePercent = nil
	handler := NewIndicatorHandler(&fakeReadings{readings: readings})

	c, rec := newContext(http.MethodGet, "/api/v1/indicators/export/csv", "", nil)
	if err := handler.ExportCSV(c); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv") {
		t.Fatalf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), ".csv") {
		t.Fatal("expected csv attachment")
	}

	records, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header and 4 rows, got %d", len(records))
	}
	if records[0][0] != "week_start" {
		t.Fatalf("unexpected header %v", records[0])
	}
	want := []string{"2024-03-11", "gas", "3.8", "", "", "risk"}
	for i, value := range want {
		if records[1][i] != value {
			t.Fatalf("column %d: expected %q, got %q", i, value, records[1][i])
		}
	}
}

// TestExportXLSX проверяет, что книга открывается и содержит строки показаний.
func TestExportXLSX(t *testing.T) {
	handler := NewIndicatorHandler(&fakeReadings{readings: weekReadings()})

	c, rec := newContext(http.MethodGet, "/api/v1/indicators/export/xlsx", "", nil)
	if err := handler.ExportXLSX(c); err != nil {
		t.Fatalf("export: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() {
		_ = book.Close()
	}()

	rows, err := book.GetRows(exportSheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[2][1] != "cpi" || rows[2][5] != "risk" {
		t.Fatalf("unexpected cpi row %v", rows[2])
	}
}

// TestSpendingPut проверяет сохранение профиля с нормализацией enum-значений.
func TestSpendingPut(t *testing.T) {
	store := &fakeSpending{}
	handler := NewSpendingHandler(store)
	userID := uuid.New()

	body := `{"gas_frequency":"Weekly","monthly_rent":1800,"food_ratio":"high","transport_mode":"car","has_debt":true}`
	c, rec := newContext(http.MethodPut, "/api/v1/spending-pattern", body, &userID)
	if err := handler.Put(c); err != nil {
		t.Fatalf("put: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	saved := store.patterns[userID]
	if saved.GasFrequency != models.GasFrequencyWeekly || saved.FoodRatio != models.FoodRatioHigh {
		t.Fatalf("unexpected pattern %+v", saved)
	}
	if saved.MonthlyRent == nil || *saved.MonthlyRent != 1800 || saved.HasDebt == nil || !*saved.HasDebt {
		t.Fatalf("unexpected rent or debt %+v", saved)
	}

	c, rec = newContext(http.MethodGet, "/api/v1/spending-pattern", "", &userID)
	if err := handler.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"gas_frequency":"weekly"`) {
		t.Fatalf("unexpected get %d %s", rec.Code, rec.Body.String())
	}
}

// TestSpendingPutInvalid проверяет отказ на неизвестных значениях и отрицательной аренде.
func TestSpendingPutInvalid(t *testing.T) {
	handler := NewSpendingHandler(&fakeSpending{})
	userID := uuid.New()

	for _, body := range []string{
		`{"gas_frequency":"hourly"}`,
		`{"food_ratio":"huge"}`,
		`{"transport_mode":"boat"}`,
		`{"monthly_rent":-5}`,
		`{"monthly_rent":"a lot"}`,
	} {
		c, rec := newContext(http.MethodPut, "/api/v1/spending-pattern", body, &userID)
		_ = handler.Put(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

// TestSpendingGetMissing проверяет 404 без профиля.
func TestSpendingGetMissing(t *testing.T) {
	handler := NewSpendingHandler(&fakeSpending{})
	userID := uuid.New()

	c, rec := newContext(http.MethodGet, "/api/v1/spending-pattern", "", &userID)
	_ = handler.Get(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// TestAdminRunSignals проверяет запуск текущей недели и разбор ошибок сервиса.
func TestAdminRunSignals(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewAdminHandler(runner, fakeUsers{}, fakeUsage{}, nil, nil, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/admin/signals/run", "", nil)
	if err := handler.RunSignals(c); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.Code != http.StatusOK || !runner.ran.Equal(testWeek) {
		t.Fatalf("unexpected run %d %s", rec.Code, runner.ran)
	}

	cases := map[error]int{
		signals.ErrWeekClosed:     http.StatusConflict,
		signals.ErrWeekNotOpen:    http.StatusUnprocessableEntity,
		signals.ErrNoObservations: http.StatusBadGateway,
		errors.New("boom"):        http.StatusInternalServerError,
	}
	for runErr, want := range cases {
		runner.runErr = runErr
		c, rec := newContext(http.MethodPost, "/api/v1/admin/signals/run", "", nil)
		_ = handler.RunSignals(c)
		if rec.Code != want {
			t.Fatalf("%v: expected %d, got %d", runErr, want, rec.Code)
		}
	}
}

// TestAdminRecomputeSignals проверяет приведение даты к понедельнику и обязательность week.
func TestAdminRecomputeSignals(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewAdminHandler(runner, fakeUsers{}, fakeUsage{}, nil, nil, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/admin/signals/recompute?week=2024-03-14", "", nil)
	if err := handler.RecomputeSignals(c); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if rec.Code != http.StatusOK || !runner.recomputed.Equal(testWeek) {
		t.Fatalf("unexpected recompute %d %s", rec.Code, runner.recomputed)
	}

	c, rec = newContext(http.MethodPost, "/api/v1/admin/signals/recompute", "", nil)
	_ = handler.RecomputeSignals(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without week, got %d", rec.Code)
	}

	runner.runErr = signals.ErrNoReadings
	c, rec = newContext(http.MethodPost, "/api/v1/admin/signals/recompute?week=2024-03-11", "", nil)
	_ = handler.RecomputeSignals(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty week, got %d", rec.Code)
	}
}

// TestAdminUsageStats проверяет счетчики тарифов и статус планировщика.
func TestAdminUsageStats(t *testing.T) {
	users := fakeUsers{users: map[uuid.UUID]models.User{
		uuid.New(): {Plan: models.PlanFree},
		uuid.New(): {Plan: models.PlanFree},
		uuid.New(): {Plan: models.PlanPremium},
	}}
	handler := NewAdminHandler(&fakeRunner{}, users, fakeUsage{}, fixedStatus{}, fixedStreams(2), nil)

	c, rec := newContext(http.MethodGet, "/api/v1/admin/usage?weeks=4", "", nil)
	if err := handler.UsageStats(c); err != nil {
		t.Fatalf("usage: %v", err)
	}

	var response AdminUsageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.Users != 3 || len(response.Plans) != 2 || response.Plans[1].Count != 1 {
		t.Fatalf("unexpected counts %+v", response)
	}
	if response.Usage.Signals != 4 {
		t.Fatalf("expected weeks to reach the repository, got %d", response.Usage.Signals)
	}
	if response.Scheduler == nil || response.Scheduler.RunCount != 3 {
		t.Fatalf("expected scheduler status, got %+v", response.Scheduler)
	}
	if response.Streams != 2 {
		t.Fatalf("expected 2 open streams, got %d", response.Streams)
	}
}

// TestAdminMiddleware проверяет allow-list email без учета регистра.
func TestAdminMiddleware(t *testing.T) {
	adminID := uuid.New()
	userID := uuid.New()
	users := fakeUsers{users: map[uuid.UUID]models.User{
		adminID: {ID: adminID, Email: "Ops@Example.com"},
		userID:  {ID: userID, Email: "user@example.com"},
	}}

	next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	middleware := AdminMiddleware(users, []string{" ops@example.com "})(next)

	c, rec := newContext(http.MethodGet, "/api/v1/admin/usage", "", &adminID)
	_ = middleware(c)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected admin to pass, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/api/v1/admin/usage", "", &userID)
	_ = middleware(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	closed := AdminMiddleware(users, nil)(next)
	c, rec = newContext(http.MethodGet, "/api/v1/admin/usage", "", &adminID)
	_ = closed(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with empty allow-list, got %d", rec.Code)
	}
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

// TestReady проверяет ответ при доступной и недоступной базе.
func TestReady(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/ready", "", nil)
	_ = Ready(fakePinger{})(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/ready", "", nil)
	_ = Ready(fakePinger{err: errors.New("down")})(c)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
