package service

import (
	"context"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
)

type queryService struct {
	reservations repository.ReservationRepository
	rooms        repository.RoomRepository
	opts         Options
}

func NewQueryService(reservations repository.ReservationRepository, rooms repository.RoomRepository, opts ...Option) QueryService {
	return &queryService{reservations: reservations, rooms: rooms, opts: newOptions(opts)}
}

func (s *queryService) Get(ctx context.Context, reservationID int64) (*domain.ReservationDetail, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return &domain.ReservationDetail{
		ID:            res.ID,
		Status:        string(res.Status),
		ExpiresAt:     res.ExpiresAt,
		HotelID:       s.hotelFor(ctx, res.RoomID),
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		NumRooms:      res.Quantity,
		Adults:        res.Adults,
		Children:      res.Children,
		StartDate:     res.StayStart,
		EndDate:       res.StayEnd,
		TransactionID: res.TransactionID,
		CreatedAt:     res.CreatedAt,
	}, nil
}

func (s *queryService) ListByUser(ctx context.Context, userID int64, page, size int) ([]domain.ReservationSummary, error) {
	logger.EnterMethod("queryService.ListByUser", "userID", userID, "page", page, "size", size)

	limit, offset := s.opts.pageWindow(page, size)
	list, err := s.reservations.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		logger.ExitMethodWithError("queryService.ListByUser", err, "userID", userID)
		return nil, err
	}

	hotels := make(map[int64]*int64)
	out := make([]domain.ReservationSummary, 0, len(list))
	for _, res := range list {
		hotelID, ok := hotels[res.RoomID]
		if !ok {
			hotelID = s.hotelFor(ctx, res.RoomID)
			hotels[res.RoomID] = hotelID
		}
		out = append(out, domain.ReservationSummary{
			ID:        res.ID,
			Status:    string(res.Status),
			UserID:    res.UserID,
			RoomID:    res.RoomID,
			HotelID:   hotelID,
			NumRooms:  res.Quantity,
			Adults:    res.Adults,
			Children:  res.Children,
			StartDate: res.StayStart,
			EndDate:   res.StayEnd,
		})
	}

	logger.ExitMethod("queryService.ListByUser", "userID", userID, "count", len(out))
	return out, nil
}

// hotelFor is display enrichment only; a failed lookup leaves the hotel blank.
func (s *queryService) hotelFor(ctx context.Context, roomID int64) *int64 {
	hotelID, err := s.rooms.HotelIDForRoom(ctx, roomID)
	if err != nil {
		logger.WarnContext(ctx, "Hotel lookup failed", "room_id", roomID, "error", err)
		return nil
	}
	return hotelID
}
