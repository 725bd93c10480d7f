// Package board maintains the branch status board: the ATMs and service
// points a branch shows on its lobby displays, with their operational state.
// State lives in Redis so every node shows the same board; changes are
// fanned out as board_updated to the staff and admin consoles.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
)

const boardKey = "bajeh:board:service_points"

// PointStatus is the operational state of one service point.
type PointStatus string

const (
	StatusOperational      PointStatus = "operational"
	StatusOutOfService     PointStatus = "out_of_service"
	StatusLowCash          PointStatus = "low_cash"
	StatusUnderMaintenance PointStatus = "under_maintenance"
)

func (s PointStatus) Valid() bool {
	switch s {
	case StatusOperational, StatusOutOfService, StatusLowCash, StatusUnderMaintenance:
		return true
	}
	return false
}

// ServicePoint is one board entry.
type ServicePoint struct {
	Name        string      `json:"name"`
	Status      PointStatus `json:"status"`
	QueueLength int         `json:"queue_length"`
	HasCash     bool        `json:"has_cash"`
	UpdatedBy   string      `json:"updated_by"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type UpdateRequest struct {
	Caller      identity.Account
	Name        string
	Status      PointStatus
	QueueLength int
	HasCash     bool
}

type Service interface {
	Snapshot(ctx context.Context) ([]ServicePoint, error)
	Update(ctx context.Context, req UpdateRequest) (*ServicePoint, error)
	Remove(ctx context.Context, caller identity.Account, name string) error
}

type boardService struct {
	client    *redis.Client
	publisher fanout.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func New(client *redis.Client, pub fanout.Publisher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &boardService{client: client, publisher: pub, logger: logger, now: time.Now}
}

func isStaff(a identity.Account) bool {
	return a.Role == identity.RoleStaff || a.Role == identity.RoleAdmin
}

// Snapshot returns every service point, name-sorted for stable display.
func (s *boardService) Snapshot(ctx context.Context) ([]ServicePoint, error) {
	entries, err := s.client.HGetAll(ctx, boardKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	points := make([]ServicePoint, 0, len(entries))
	for name, raw := range entries {
		var p ServicePoint
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.Warn("skipping corrupt board entry", "name", name, "error", err)
			continue
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points, nil
}

func (s *boardService) Update(ctx context.Context, req UpdateRequest) (*ServicePoint, error) {
	if !isStaff(req.Caller) {
		return nil, ErrUnauthorized
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: service point name is required", ErrValidation)
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	if req.QueueLength < 0 {
		return nil, fmt.Errorf("%w: negative queue length", ErrValidation)
	}

	point := ServicePoint{
		Name:        req.Name,
		Status:      req.Status,
		QueueLength: req.QueueLength,
		HasCash:     req.HasCash,
		UpdatedBy:   req.Caller.ID,
		UpdatedAt:   s.now().UTC(),
	}
	raw, err := json.Marshal(point)
	if err != nil {
		return nil, fmt.Errorf("encode service point: %w", err)
	}
	if err := s.client.HSet(ctx, boardKey, point.Name, raw).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.announce(ctx, point)
	s.logger.Info("board updated",
		"service_point", point.Name, "status", string(point.Status), "by", req.Caller.ID)
	return &point, nil
}

func (s *boardService) Remove(ctx context.Context, caller identity.Account, name string) error {
	if caller.Role != identity.RoleAdmin {
		return ErrUnauthorized
	}
	n, err := s.client.HDel(ctx, boardKey, name).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("board entry removed", "service_point", name, "by", caller.ID)
	return nil
}

func (s *boardService) announce(ctx context.Context, point ServicePoint) {
	if s.publisher == nil {
		return
	}
	ev := fanout.Event{
		Kind:      fanout.EventBoardUpdated,
		Payload:   map[string]any{"service_point": point},
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev, fanout.Consoles()...); err != nil {
		s.logger.Warn("board fanout failed", "service_point", point.Name, "error", err)
	}
}
