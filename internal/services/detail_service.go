package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/models/dtos"
	gormModels "logitrack/tracker/internal/models/gorm"
	"logitrack/tracker/internal/timeline"
)

var ErrShipmentNotFound = errors.New("shipment not found")

const detailLoadTimeout = 15 * time.Second

// ActiveFlagLiterals are the string forms of an active note, compared
// case-insensitively after trimming.
var ActiveFlagLiterals = []string{"true", "1", "t", "yes", "y"}

// DetailStore is the read side used by DetailService.
type DetailStore interface {
	GetShipment(ctx context.Context, shipmentID string) (*gormModels.Shipment, error)
	ListInputSea(ctx context.Context, shipmentID string) ([]gormModels.InputSea, error)
	ListInputAir(ctx context.Context, shipmentID string) ([]gormModels.InputAir, error)
	GetMilestones(ctx context.Context, mode constants.Mode, shipmentID string) (map[string]*string, error)
	ListNotes(ctx context.Context, shipmentID string) ([]gormModels.MilestoneNote, error)
}

type DetailService struct {
	repo    DetailStore
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
	group   singleflight.Group
}

func NewDetailService(repo DetailStore, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *DetailService {
	return &DetailService{repo: repo, cache: cache, ttl: ttl, metrics: m}
}

// GetDetail returns the shipment with its cargo, milestones, active notes and
// derived timeline. Concurrent loads of one id share a single query set.
func (s *DetailService) GetDetail(ctx context.Context, shipmentID string) (*dtos.ShipmentDetail, error) {
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return nil, ErrShipmentNotFound
	}

	key := string(constants.CachePrefixDetail) + shipmentID
	if s.cache != nil {
		if cached, ok := common.GetJSON[dtos.ShipmentDetail](s.cache, key); ok {
			s.countCache(true)
			return &cached, nil
		}
		s.countCache(false)
	}

	// The shared load outlives any single caller; each caller still honors
	// its own ctx while waiting.
	ch := s.group.DoChan(shipmentID, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detailLoadTimeout)
		defer cancel()
		detail, err := s.load(lctx, shipmentID)
		if err == nil && s.cache != nil {
			common.SetJSON(s.cache, key, detail, s.ttl)
		}
		return detail, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dtos.ShipmentDetail), nil
	}
}

// GetTimeline returns only the derived timeline of a shipment.
func (s *DetailService) GetTimeline(ctx context.Context, shipmentID string) (*timeline.Timeline, error) {
	d, err := s.GetDetail(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return d.Timeline, nil
}

func (s *DetailService) load(ctx context.Context, shipmentID string) (*dtos.ShipmentDetail, error) {
	ship, err := s.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if ship == nil {
		return nil, ErrShipmentNotFound
	}

	mode := ModeOf(ship.Mode)
	detail := &dtos.ShipmentDetail{Shipment: *ship}
	var notes []gormModels.MilestoneNote

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail.InputSea, err = s.repo.ListInputSea(gctx, shipmentID)
		return err
	})
	g.Go(func() (err error) {
		detail.InputAir, err = s.repo.ListInputAir(gctx, shipmentID)
		return err
	})
	g.Go(func() (err error) {
		detail.Milestone, err = s.repo.GetMilestones(gctx, mode, shipmentID)
		return err
	})
	g.Go(func() (err error) {
		notes, err = s.repo.ListNotes(gctx, shipmentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load detail of %s: %w", shipmentID, err)
	}

	detail.Notes = ActiveNotes(notes)
	detail.Timeline = timeline.Derive(timeline.Input{
		Mode:      string(mode),
		Milestone: detail.Milestone,
		Shipment:  ShipmentFields(ship),
		Notes:     noteInputs(detail.Notes),
	})
	return detail, nil
}

// ModeOf reads SEA as sea and anything else as air.
func ModeOf(mode *string) constants.Mode {
	if mode != nil && strings.EqualFold(strings.TrimSpace(*mode), string(constants.ModeSea)) {
		return constants.ModeSea
	}
	return constants.ModeAir
}

// ParseActiveFlag reports whether a stored active value means active.
func ParseActiveFlag(v *string) bool {
	if v == nil {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(*v))
	for _, lit := range ActiveFlagLiterals {
		if s == lit {
			return true
		}
	}
	return false
}

// ActiveNotes keeps the active notes, preserving order.
func ActiveNotes(notes []gormModels.MilestoneNote) []gormModels.MilestoneNote {
	out := make([]gormModels.MilestoneNote, 0, len(notes))
	for _, n := range notes {
		if ParseActiveFlag(n.Active) {
			out = append(out, n)
		}
	}
	return out
}

// ShipmentFields exposes the shipment columns the timeline reads.
func ShipmentFields(s *gormModels.Shipment) map[string]*string {
	return map[string]*string{
		"place_of_receipt":    s.PlaceOfReceipt,
		"pol_aol":             s.POLAOL,
		"pod_aod":             s.PODAOD,
		"place_of_delivery":   s.PlaceOfDelivery,
		"transshipment_ports": s.TransshipmentPorts,
		"remarks":             s.Remarks,
	}
}

func noteInputs(notes []gormModels.MilestoneNote) []timeline.NoteInput {
	out := make([]timeline.NoteInput, 0, len(notes))
	for _, n := range notes {
		out = append(out, timeline.NoteInput{
			ID:       n.ID,
			Step:     n.Step,
			Note:     n.Note,
			NoteType: n.NoteType,
			NoteTime: n.NoteTime,
		})
	}
	return out
}

func (s *DetailService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues("detail").Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues("detail").Inc()
	}
}
