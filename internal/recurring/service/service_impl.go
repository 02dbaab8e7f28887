package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/bookflow/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/bookflow/internal/catalog/domain"
	"github.com/smallbiznis/bookflow/internal/clock"
	"github.com/smallbiznis/bookflow/internal/config"
	conversationdomain "github.com/smallbiznis/bookflow/internal/conversation/domain"
	customerdomain "github.com/smallbiznis/bookflow/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/bookflow/internal/observability/metrics"
	"github.com/smallbiznis/bookflow/internal/providers/message"
	"github.com/smallbiznis/bookflow/internal/recurrence"
	"github.com/smallbiznis/bookflow/internal/recurring/domain"
	"github.com/smallbiznis/bookflow/internal/recurring/guard"
	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
	"github.com/smallbiznis/bookflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const notifyTimeFormat = "Monday, 02 Jan 2006 at 15:04"

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Policy *config.PolicyHolder

	SeriesRepo       seriesdomain.Repository
	BookingRepo      bookingdomain.Repository
	OfferingRepo     catalogdomain.Repository
	CustomerRepo     customerdomain.Repository
	ConversationRepo conversationdomain.Repository

	BookingSvc bookingdomain.Service
	Messenger  message.Provider
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	policy *config.PolicyHolder

	seriesRepo       seriesdomain.Repository
	bookingRepo      bookingdomain.Repository
	offeringRepo     catalogdomain.Repository
	customerRepo     customerdomain.Repository
	conversationRepo conversationdomain.Repository

	bookingSvc bookingdomain.Service
	messenger  message.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("recurring.service"),
		genID:            p.GenID,
		clock:            p.Clock,
		policy:           p.Policy,
		seriesRepo:       p.SeriesRepo,
		bookingRepo:      p.BookingRepo,
		offeringRepo:     p.OfferingRepo,
		customerRepo:     p.CustomerRepo,
		conversationRepo: p.ConversationRepo,
		bookingSvc:       p.BookingSvc,
		messenger:        p.Messenger,
	}
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
)

func (s *Service) ProcessDue(ctx context.Context) (domain.Result, error) {
	now := s.clock.Now()
	policy := s.policy.Current()

	seriesList, err := s.seriesRepo.ListActive(ctx, s.db)
	if err != nil {
		s.log.Error("active series query failed", zap.Error(err))
		return domain.Result{}, err
	}

	var res domain.Result
	for i := range seriesList {
		sr := &seriesList[i]
		out, err := s.processSeries(ctx, sr, now, policy)
		if err != nil {
			res.Failed++
			s.log.Warn("series processing failed",
				zap.String("series_id", sr.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if out == outcomeCreated {
			res.Created++
		}
	}

	engineMetrics := obsmetrics.Scheduler()
	engineMetrics.AddBookingsCreated(res.Created)
	engineMetrics.AddSeriesFailed(res.Failed)

	s.log.Info("processing pass complete",
		zap.Int("series_scanned", len(seriesList)),
		zap.Int("created", res.Created),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// processSeries runs the full occurrence pipeline for one series. Any error
// leaves the series state untouched so the next pass retries it naturally.
func (s *Service) processSeries(ctx context.Context, sr *seriesdomain.Series, now time.Time, policy config.BookingPolicy) (out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = outcomeSkipped, fmt.Errorf("series %s: panic: %v", sr.ID, r)
		}
	}()

	if err := guard.EnsureSeriesCanProcess(sr); err != nil {
		return outcomeSkipped, err
	}

	// Either boundary reaching its limit terminates the series.
	if sr.Exhausted(now) {
		return outcomeSkipped, s.completeSeries(ctx, sr, now)
	}

	candidate, err := s.nextCandidate(ctx, sr, now)
	if err != nil {
		return outcomeSkipped, err
	}

	// Bound how early a booking may be created.
	horizon := now.Add(time.Duration(policy.HorizonDays) * 24 * time.Hour)
	if candidate.After(horizon) {
		return outcomeSkipped, nil
	}

	existing, err := s.bookingRepo.FindBySeriesIDAndStart(ctx, s.db, sr.ID, candidate)
	if err != nil {
		return outcomeSkipped, err
	}
	if existing != nil {
		return outcomeSkipped, nil
	}

	start, end, actualStart, actualEnd, err := s.resolveWindow(ctx, sr, candidate, policy)
	if err != nil {
		return outcomeSkipped, err
	}

	if err := s.bookingSvc.CheckBufferedConflicts(ctx, actualStart, actualEnd, sr.ServiceID); err != nil {
		return outcomeSkipped, err
	}

	conversation, err := s.ensureConversation(ctx, sr.CustomerID, now)
	if err != nil {
		return outcomeSkipped, err
	}

	booking := &bookingdomain.Booking{
		ID:             s.genID.Generate(),
		CustomerID:     sr.CustomerID,
		ServiceID:      sr.ServiceID,
		SeriesID:       &sr.ID,
		ConversationID: conversation.ID,
		StartTime:      start,
		EndTime:        end,
		ActualStart:    actualStart,
		ActualEnd:      actualEnd,
		Status:         bookingdomain.BookingStatusConfirmed,
		ExternalRef:    bookingdomain.OccurrenceRef(sr.ID, start),
		Metadata: datatypes.JSONMap{
			"auto_booked":        true,
			"recurrence_pattern": string(sr.Pattern),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.bookingRepo.Insert(ctx, s.db, booking); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Another pass or process already booked this occurrence.
			s.log.Info("occurrence already booked",
				zap.String("series_id", sr.ID.String()),
				zap.String("external_ref", booking.ExternalRef),
			)
			return outcomeSkipped, nil
		}
		return outcomeSkipped, err
	}

	s.notify(ctx, sr, conversation, start, policy, now)

	if err := s.seriesRepo.IncrementCompleted(ctx, s.db, sr.ID, now); err != nil {
		return outcomeSkipped, err
	}
	sr.OccurrencesCompleted++

	if sr.OccurrencesCount != nil && sr.OccurrencesCompleted >= *sr.OccurrencesCount {
		if err := s.completeSeries(ctx, sr, now); err != nil {
			// The booking exists and the counter is right; the next pass
			// re-runs the terminal check.
			s.log.Warn("series completion deferred",
				zap.String("series_id", sr.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.log.Info("booking created",
		zap.String("series_id", sr.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Time("start_time", start),
	)
	return outcomeCreated, nil
}

// nextCandidate advances from the anchor until strictly after now, so any
// number of missed cycles collapse to a single future target.
func (s *Service) nextCandidate(ctx context.Context, sr *seriesdomain.Series, now time.Time) (time.Time, error) {
	anchor := sr.StartDate
	last, err := s.bookingRepo.FindLastBySeriesID(ctx, s.db, sr.ID)
	if err != nil {
		return time.Time{}, err
	}
	if last != nil {
		anchor = last.StartTime
	}

	candidate := anchor
	for !candidate.After(now) {
		candidate = recurrence.Next(sr.Pattern, sr.Interval, candidate)
	}
	return candidate, nil
}

func (s *Service) resolveWindow(ctx context.Context, sr *seriesdomain.Series, candidate time.Time, policy config.BookingPolicy) (start, end, actualStart, actualEnd time.Time, err error) {
	duration := time.Duration(policy.DefaultDurationMin) * time.Minute
	bufferBefore := time.Duration(policy.DefaultBufferBeforeMin) * time.Minute
	bufferAfter := time.Duration(policy.DefaultBufferAfterMin) * time.Minute

	if sr.ServiceID != nil {
		offering, err := s.offeringRepo.FindByID(ctx, s.db, *sr.ServiceID)
		if err != nil {
			return time.Time{}, time.Time{}, time.Time{}, time.Time{}, err
		}
		if offering != nil {
			duration = offering.Duration()
			bufferBefore = offering.BufferBefore()
			bufferAfter = offering.BufferAfter()
		}
	}

	start = candidate
	end = start.Add(duration)
	actualStart = start.Add(-bufferBefore)
	actualEnd = end.Add(bufferAfter)
	return start, end, actualStart, actualEnd, nil
}

func (s *Service) ensureConversation(ctx context.Context, customerID snowflake.ID, now time.Time) (*conversationdomain.Conversation, error) {
	conversation, err := s.conversationRepo.FindByCustomerID(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	conversation = &conversationdomain.Conversation{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		Channel:    "whatsapp",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.conversationRepo.Insert(ctx, s.db, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// notify is best-effort: a booking stands even when the customer could not
// be reached, and the created counter is unaffected.
func (s *Service) notify(ctx context.Context, sr *seriesdomain.Series, conversation *conversationdomain.Conversation, start time.Time, policy config.BookingPolicy, now time.Time) {
	customer, err := s.customerRepo.FindByID(ctx, s.db, sr.CustomerID)
	if err != nil || customer == nil || customer.Phone == "" {
		s.log.Warn("customer unreachable for booking notification",
			zap.String("series_id", sr.ID.String()),
			zap.String("customer_id", sr.CustomerID.String()),
			zap.Error(err),
		)
		return
	}

	text := fmt.Sprintf(policy.NotificationTemplate, start.Format(notifyTimeFormat))
	if err := s.messenger.SendProactiveMessage(ctx, customer.Phone, text, customer.ID); err != nil {
		s.log.Warn("booking notification failed",
			zap.String("series_id", sr.ID.String()),
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.conversationRepo.Touch(ctx, s.db, conversation.ID, now); err != nil {
		s.log.Warn("conversation touch failed",
			zap.String("conversation_id", conversation.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) completeSeries(ctx context.Context, sr *seriesdomain.Series, now time.Time) error {
	if err := s.seriesRepo.UpdateStatus(ctx, s.db, sr.ID, seriesdomain.SeriesStatusCompleted, now); err != nil {
		return err
	}
	sr.Status = seriesdomain.SeriesStatusCompleted
	obsmetrics.Scheduler().IncSeriesCompleted()
	s.log.Info("series completed",
		zap.String("series_id", sr.ID.String()),
		zap.Int("occurrences_completed", sr.OccurrencesCompleted),
	)
	return nil
}
