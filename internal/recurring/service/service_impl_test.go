package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	bookingdomain "github.com/smallbiznis/bookflow/internal/booking/domain"
	bookingrepo "github.com/smallbiznis/bookflow/internal/booking/repository"
	bookingservice "github.com/smallbiznis/bookflow/internal/booking/service"
	catalogdomain "github.com/smallbiznis/bookflow/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/bookflow/internal/catalog/repository"
	"github.com/smallbiznis/bookflow/internal/clock"
	"github.com/smallbiznis/bookflow/internal/config"
	conversationrepo "github.com/smallbiznis/bookflow/internal/conversation/repository"
	customerdomain "github.com/smallbiznis/bookflow/internal/customer/domain"
	customerrepo "github.com/smallbiznis/bookflow/internal/customer/repository"
	"github.com/smallbiznis/bookflow/internal/recurrence"
	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
	seriesrepo "github.com/smallbiznis/bookflow/internal/series/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMessage struct {
	To         string
	Text       string
	CustomerID snowflake.ID
}

type mockMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *mockMessenger) SendProactiveMessage(ctx context.Context, to, text string, customerID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{To: to, Text: text, CustomerID: customerID})
	return nil
}

func (m *mockMessenger) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

type engineFixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
	messenger *mockMessenger
	engine    *Service
}

func newEngineFixture(t *testing.T, now time.Time, policy config.BookingPolicy) *engineFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	tables := []string{
		`CREATE TABLE customers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			metadata TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE offerings (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			duration_min INTEGER NOT NULL,
			buffer_before_min INTEGER NOT NULL,
			buffer_after_min INTEGER NOT NULL,
			active BOOLEAN NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE conversations (
			id INTEGER PRIMARY KEY,
			customer_id INTEGER NOT NULL,
			channel TEXT NOT NULL,
			last_message_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE recurring_series (
			id INTEGER PRIMARY KEY,
			customer_id INTEGER NOT NULL,
			service_id INTEGER,
			routine_id INTEGER,
			pattern TEXT NOT NULL,
			recur_interval INTEGER NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME,
			occurrences_count INTEGER,
			occurrences_completed INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			metadata TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE bookings (
			id INTEGER PRIMARY KEY,
			customer_id INTEGER NOT NULL,
			service_id INTEGER,
			series_id INTEGER,
			conversation_id INTEGER NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			actual_start DATETIME NOT NULL,
			actual_end DATETIME NOT NULL,
			status TEXT NOT NULL,
			external_ref TEXT NOT NULL UNIQUE,
			metadata TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range tables {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fakeClock := clock.NewFakeClock(now)
	messenger := &mockMessenger{}

	bookings := bookingrepo.Provide()
	bookingSvc := bookingservice.New(bookingservice.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: bookings,
	})

	engine := New(Params{
		DB:               db,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            fakeClock,
		Policy:           config.NewStaticPolicyHolder(policy),
		SeriesRepo:       seriesrepo.Provide(),
		BookingRepo:      bookings,
		OfferingRepo:     catalogrepo.Provide(),
		CustomerRepo:     customerrepo.Provide(),
		ConversationRepo: conversationrepo.Provide(),
		BookingSvc:       bookingSvc,
		Messenger:        messenger,
	}).(*Service)

	return &engineFixture{
		db:        db,
		node:      node,
		clock:     fakeClock,
		messenger: messenger,
		engine:    engine,
	}
}

func (f *engineFixture) seedCustomer(t *testing.T, phone string) snowflake.ID {
	t.Helper()
	customer := &customerdomain.Customer{
		ID:        f.node.Generate(),
		Name:      "Ana Souza",
		Phone:     phone,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	if err := customerrepo.Provide().Insert(context.Background(), f.db, customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer.ID
}

func (f *engineFixture) seedOffering(t *testing.T, durationMin, beforeMin, afterMin int) snowflake.ID {
	t.Helper()
	offering := &catalogdomain.Offering{
		ID:              f.node.Generate(),
		Name:            "Haircut",
		DurationMin:     durationMin,
		BufferBeforeMin: beforeMin,
		BufferAfterMin:  afterMin,
		Active:          true,
		CreatedAt:       f.clock.Now(),
		UpdatedAt:       f.clock.Now(),
	}
	if err := catalogrepo.Provide().Insert(context.Background(), f.db, offering); err != nil {
		t.Fatalf("seed offering: %v", err)
	}
	return offering.ID
}

func (f *engineFixture) seedSeries(t *testing.T, series *seriesdomain.Series) snowflake.ID {
	t.Helper()
	if series.ID == 0 {
		series.ID = f.node.Generate()
	}
	if series.Status == "" {
		series.Status = seriesdomain.SeriesStatusActive
	}
	if series.CreatedAt.IsZero() {
		series.CreatedAt = f.clock.Now()
		series.UpdatedAt = f.clock.Now()
	}
	if err := seriesrepo.Provide().Insert(context.Background(), f.db, series); err != nil {
		t.Fatalf("seed series: %v", err)
	}
	return series.ID
}

func (f *engineFixture) bookings(t *testing.T, seriesID snowflake.ID) []bookingdomain.Booking {
	t.Helper()
	rows, err := bookingrepo.Provide().List(context.Background(), f.db, bookingdomain.ListBookingFilter{SeriesID: seriesID, Limit: 100})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	return rows
}

func (f *engineFixture) reloadSeries(t *testing.T, id snowflake.ID) *seriesdomain.Series {
	t.Helper()
	series, err := seriesrepo.Provide().FindByID(context.Background(), f.db, id)
	if err != nil {
		t.Fatalf("reload series: %v", err)
	}
	if series == nil {
		t.Fatalf("series %s vanished", id)
	}
	return series
}

func mondayMorning() time.Time {
	// Monday 2025-06-02 10:00 UTC.
	return time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
}

func testPolicy() config.BookingPolicy {
	return config.BookingPolicy{
		HorizonDays:          7,
		DefaultDurationMin:   30,
		NotificationTemplate: "Your next appointment has been scheduled for %s.",
	}
}

func TestProcessDueCreatesBookingFromOffering(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990001")
	offeringID := f.seedOffering(t, 45, 10, 5)
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		ServiceID:  &offeringID,
		Pattern:    recurrence.PatternWeekly,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 1 || res.Failed != 0 {
		t.Fatalf("expected created=1 failed=0, got %+v", res)
	}

	rows := f.bookings(t, seriesID)
	if len(rows) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(rows))
	}
	booking := rows[0]

	wantStart := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
	if !booking.StartTime.Equal(wantStart) {
		t.Errorf("start_time = %v, want %v", booking.StartTime, wantStart)
	}
	if !booking.EndTime.Equal(wantStart.Add(45 * time.Minute)) {
		t.Errorf("end_time = %v, want %v", booking.EndTime, wantStart.Add(45*time.Minute))
	}
	if !booking.ActualStart.Equal(wantStart.Add(-10 * time.Minute)) {
		t.Errorf("actual_start = %v, want %v", booking.ActualStart, wantStart.Add(-10*time.Minute))
	}
	if !booking.ActualEnd.Equal(wantStart.Add(50 * time.Minute)) {
		t.Errorf("actual_end = %v, want %v", booking.ActualEnd, wantStart.Add(50*time.Minute))
	}
	if booking.Status != bookingdomain.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", booking.Status)
	}
	if booking.ExternalRef != bookingdomain.OccurrenceRef(seriesID, wantStart) {
		t.Errorf("external_ref = %s", booking.ExternalRef)
	}
	if auto, ok := booking.Metadata["auto_booked"].(bool); !ok || !auto {
		t.Errorf("metadata auto_booked = %v", booking.Metadata["auto_booked"])
	}

	series := f.reloadSeries(t, seriesID)
	if series.OccurrencesCompleted != 1 {
		t.Errorf("occurrences_completed = %d, want 1", series.OccurrencesCompleted)
	}
	if series.Status != seriesdomain.SeriesStatusActive {
		t.Errorf("status = %s, want active", series.Status)
	}

	msgs := f.messenger.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(msgs))
	}
	if msgs[0].To != "+5511999990001" {
		t.Errorf("notification to = %s", msgs[0].To)
	}
	wantText := "Your next appointment has been scheduled for Monday, 09 Jun 2025 at 09:00."
	if msgs[0].Text != wantText {
		t.Errorf("notification text = %q, want %q", msgs[0].Text, wantText)
	}

	// A conversation was created for the customer and touched.
	conversation, err := conversationrepo.Provide().FindByCustomerID(context.Background(), f.db, customerID)
	if err != nil || conversation == nil {
		t.Fatalf("expected conversation, err=%v", err)
	}
	if conversation.Channel != "whatsapp" {
		t.Errorf("channel = %s, want whatsapp", conversation.Channel)
	}
	if conversation.ID != booking.ConversationID {
		t.Errorf("booking conversation_id = %s, want %s", booking.ConversationID, conversation.ID)
	}
	if conversation.LastMessageAt == nil {
		t.Error("expected last_message_at to be set after notification")
	}
}

func TestProcessDueUsesPolicyDefaultsWithoutOffering(t *testing.T) {
	now := mondayMorning()
	policy := testPolicy()
	policy.DefaultBufferBeforeMin = 15
	policy.DefaultBufferAfterMin = 5
	f := newEngineFixture(t, now, policy)

	customerID := f.seedCustomer(t, "+5511999990002")
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternDaily,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected created=1, got %+v", res)
	}

	rows := f.bookings(t, seriesID)
	if len(rows) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(rows))
	}
	booking := rows[0]

	// Start date is later today, so the first occurrence is today's slot.
	wantStart := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	if !booking.StartTime.Equal(wantStart) {
		t.Errorf("start_time = %v, want %v", booking.StartTime, wantStart)
	}
	if !booking.EndTime.Equal(wantStart.Add(30 * time.Minute)) {
		t.Errorf("end_time = %v, want default 30m after start", booking.EndTime)
	}
	if !booking.ActualStart.Equal(wantStart.Add(-15 * time.Minute)) {
		t.Errorf("actual_start = %v, want policy buffer applied", booking.ActualStart)
	}
	if !booking.ActualEnd.Equal(wantStart.Add(35 * time.Minute)) {
		t.Errorf("actual_end = %v, want policy buffer applied", booking.ActualEnd)
	}
}

func TestProcessDueIsIdempotentAcrossPasses(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990003")
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternWeekly,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	})

	if res, err := f.engine.ProcessDue(context.Background()); err != nil || res.Created != 1 {
		t.Fatalf("first pass: res=%+v err=%v", res, err)
	}
	// Same clock, same pass inputs: nothing new may be created.
	if res, err := f.engine.ProcessDue(context.Background()); err != nil || res.Created != 0 || res.Failed != 0 {
		t.Fatalf("second pass: res=%+v err=%v", res, err)
	}

	if rows := f.bookings(t, seriesID); len(rows) != 1 {
		t.Fatalf("expected 1 booking after two passes, got %d", len(rows))
	}
	if series := f.reloadSeries(t, seriesID); series.OccurrencesCompleted != 1 {
		t.Fatalf("occurrences_completed = %d, want 1", series.OccurrencesCompleted)
	}
}

func TestProcessDueHonorsBookingHorizon(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990004")
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternMonthly,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	// Next occurrence is Jul 1, well past the 7-day horizon.
	if res.Created != 0 || res.Failed != 0 {
		t.Fatalf("expected nothing created, got %+v", res)
	}
	if rows := f.bookings(t, seriesID); len(rows) != 0 {
		t.Fatalf("expected no bookings, got %d", len(rows))
	}

	// Advance to within the horizon and the occurrence materializes.
	f.clock.Set(time.Date(2025, 6, 28, 10, 0, 0, 0, time.UTC))
	res, err = f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue after advance: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected created=1 within horizon, got %+v", res)
	}
	rows := f.bookings(t, seriesID)
	if len(rows) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(rows))
	}
	wantStart := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	if !rows[0].StartTime.Equal(wantStart) {
		t.Errorf("start_time = %v, want %v", rows[0].StartTime, wantStart)
	}
}

func TestProcessDueCollapsesMissedOccurrences(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990005")
	// Ten daily occurrences already in the past and never booked.
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternDaily,
		Interval:   1,
		StartDate:  time.Date(2025, 5, 23, 9, 0, 0, 0, time.UTC),
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected a single catch-up booking, got %+v", res)
	}

	rows := f.bookings(t, seriesID)
	if len(rows) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(rows))
	}
	// Only the next future slot is booked; no backfill.
	wantStart := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	if !rows[0].StartTime.Equal(wantStart) {
		t.Errorf("start_time = %v, want %v", rows[0].StartTime, wantStart)
	}
	if !rows[0].StartTime.After(now) {
		t.Error("booking must never be in the past")
	}
}

func TestProcessDueCompletesSeriesAtOccurrenceLimit(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990006")
	limit := 2
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID:           customerID,
		Pattern:              recurrence.PatternWeekly,
		Interval:             1,
		StartDate:            time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		OccurrencesCount:     &limit,
		OccurrencesCompleted: 1,
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected created=1, got %+v", res)
	}

	series := f.reloadSeries(t, seriesID)
	if series.Status != seriesdomain.SeriesStatusCompleted {
		t.Fatalf("status = %s, want completed after reaching the limit", series.Status)
	}
	if series.OccurrencesCompleted != 2 {
		t.Fatalf("occurrences_completed = %d, want 2", series.OccurrencesCompleted)
	}

	// A completed series produces nothing more, ever.
	f.clock.Advance(30 * 24 * time.Hour)
	if res, err := f.engine.ProcessDue(context.Background()); err != nil || res.Created != 0 {
		t.Fatalf("pass after completion: res=%+v err=%v", res, err)
	}
	if rows := f.bookings(t, seriesID); len(rows) != 1 {
		t.Fatalf("expected 1 booking total, got %d", len(rows))
	}
}

func TestProcessDueCompletesExhaustedSeriesWithoutBooking(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990007")
	limit := 3
	countSeries := f.seedSeries(t, &seriesdomain.Series{
		CustomerID:           customerID,
		Pattern:              recurrence.PatternWeekly,
		Interval:             1,
		StartDate:            time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		OccurrencesCount:     &limit,
		OccurrencesCompleted: 3,
	})
	endDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dateSeries := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternWeekly,
		Interval:   1,
		StartDate:  time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		EndDate:    &endDate,
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 0 || res.Failed != 0 {
		t.Fatalf("expected no creations or failures, got %+v", res)
	}

	if series := f.reloadSeries(t, countSeries); series.Status != seriesdomain.SeriesStatusCompleted {
		t.Errorf("count-bounded series status = %s, want completed", series.Status)
	}
	if series := f.reloadSeries(t, dateSeries); series.Status != seriesdomain.SeriesStatusCompleted {
		t.Errorf("date-bounded series status = %s, want completed", series.Status)
	}
	if rows := f.bookings(t, countSeries); len(rows) != 0 {
		t.Errorf("expected no bookings for exhausted series, got %d", len(rows))
	}
}

func TestProcessDueSlotConflictCountsFailed(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	customerID := f.seedCustomer(t, "+5511999990008")
	otherCustomer := f.seedCustomer(t, "+5511999990009")
	offeringID := f.seedOffering(t, 60, 0, 0)

	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		ServiceID:  &offeringID,
		Pattern:    recurrence.PatternWeekly,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	})

	// The Jun 9 09:00-10:00 slot is already taken for this offering.
	taken := time.Date(2025, 6, 9, 9, 30, 0, 0, time.UTC)
	blocker := &bookingdomain.Booking{
		ID:             f.node.Generate(),
		CustomerID:     otherCustomer,
		ServiceID:      &offeringID,
		ConversationID: f.node.Generate(),
		StartTime:      taken,
		EndTime:        taken.Add(30 * time.Minute),
		ActualStart:    taken,
		ActualEnd:      taken.Add(30 * time.Minute),
		Status:         bookingdomain.BookingStatusConfirmed,
		ExternalRef:    "manual-blocker",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := bookingrepo.Provide().Insert(context.Background(), f.db, blocker); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 0 || res.Failed != 1 {
		t.Fatalf("expected created=0 failed=1, got %+v", res)
	}

	series := f.reloadSeries(t, seriesID)
	if series.Status != seriesdomain.SeriesStatusActive {
		t.Errorf("status = %s, conflict must not change series state", series.Status)
	}
	if series.OccurrencesCompleted != 0 {
		t.Errorf("occurrences_completed = %d, want 0", series.OccurrencesCompleted)
	}
	if rows := f.bookings(t, seriesID); len(rows) != 0 {
		t.Errorf("expected no bookings for conflicted series, got %d", len(rows))
	}
	if msgs := f.messenger.messages(); len(msgs) != 0 {
		t.Errorf("expected no notification on conflict, got %d", len(msgs))
	}
}

func TestProcessDueOneBadSeriesDoesNotAbortTheBatch(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())

	badCustomer := f.seedCustomer(t, "+5511999990010")
	goodCustomer := f.seedCustomer(t, "+5511999990011")

	// Zero interval can never advance; the guard rejects it.
	f.seedSeries(t, &seriesdomain.Series{
		CustomerID: badCustomer,
		Pattern:    recurrence.PatternDaily,
		Interval:   0,
		StartDate:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	goodSeries := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: goodCustomer,
		Pattern:    recurrence.PatternDaily,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 1 || res.Failed != 1 {
		t.Fatalf("expected created=1 failed=1, got %+v", res)
	}
	if rows := f.bookings(t, goodSeries); len(rows) != 1 {
		t.Fatalf("expected healthy series to be booked, got %d bookings", len(rows))
	}
}

func TestProcessDueNotificationFailureStillCountsCreated(t *testing.T) {
	now := mondayMorning()
	f := newEngineFixture(t, now, testPolicy())
	f.messenger.err = errors.New("gateway unreachable")

	customerID := f.seedCustomer(t, "+5511999990012")
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternWeekly,
		Interval:   1,
		StartDate:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	})

	res, err := f.engine.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if res.Created != 1 || res.Failed != 0 {
		t.Fatalf("expected created=1 failed=0 despite notification failure, got %+v", res)
	}
	if rows := f.bookings(t, seriesID); len(rows) != 1 {
		t.Fatalf("expected booking to stand, got %d", len(rows))
	}

	conversation, err := conversationrepo.Provide().FindByCustomerID(context.Background(), f.db, customerID)
	if err != nil || conversation == nil {
		t.Fatalf("expected conversation, err=%v", err)
	}
	if conversation.LastMessageAt != nil {
		t.Error("last_message_at must stay unset when the send fails")
	}
}

func TestProcessDueBiweeklyAdvancesFromLastBooking(t *testing.T) {
	now := mondayMorning()
	policy := testPolicy()
	policy.HorizonDays = 30
	f := newEngineFixture(t, now, policy)

	customerID := f.seedCustomer(t, "+5511999990013")
	seriesID := f.seedSeries(t, &seriesdomain.Series{
		CustomerID: customerID,
		Pattern:    recurrence.PatternBiweekly,
		Interval:   1,
		StartDate:  time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC),
	})

	// Both May 19 and Jun 2 09:00 are already past, so the first target is
	// Jun 16.
	if res, err := f.engine.ProcessDue(context.Background()); err != nil || res.Created != 1 {
		t.Fatalf("first pass: res=%+v err=%v", res, err)
	}

	// After the booked slot passes, the next pass anchors on it, not on
	// the series start date.
	f.clock.Set(time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC))
	if res, err := f.engine.ProcessDue(context.Background()); err != nil || res.Created != 1 {
		t.Fatalf("second pass: res=%+v err=%v", res, err)
	}

	rows := f.bookings(t, seriesID)
	if len(rows) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(rows))
	}
	first := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	second := time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC)
	if !rows[0].StartTime.Equal(first) {
		t.Errorf("first start = %v, want %v", rows[0].StartTime, first)
	}
	if !rows[1].StartTime.Equal(second) {
		t.Errorf("second start = %v, want %v", rows[1].StartTime, second)
	}
}
