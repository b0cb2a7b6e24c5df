package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/service"
)

type ReservationHandler struct {
	holdSvc      service.HoldService
	lifecycleSvc service.LifecycleService
	querySvc     service.QueryService
}

func NewReservationHandler(holdSvc service.HoldService, lifecycleSvc service.LifecycleService, querySvc service.QueryService) *ReservationHandler {
	return &ReservationHandler{holdSvc: holdSvc, lifecycleSvc: lifecycleSvc, querySvc: querySvc}
}

func (h *ReservationHandler) Hold(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	f := fields{req}
	checkIn, err := f.date("checkIn")
	if err != nil {
		return nil, err
	}
	checkOut, err := f.date("checkOut")
	if err != nil {
		return nil, err
	}
	roomID, err := f.id("roomId", true)
	if err != nil {
		return nil, err
	}
	qty, err := f.num("qty")
	if err != nil {
		return nil, err
	}
	adults, err := f.num("adults")
	if err != nil {
		return nil, err
	}
	children, err := f.num("children")
	if err != nil {
		return nil, err
	}
	holdSeconds, err := f.num("holdSeconds")
	if err != nil {
		return nil, err
	}

	res, err := h.holdSvc.Hold(ctx, domain.HoldRequest{
		UserID:      userID,
		RoomID:      roomID,
		Quantity:    qty,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Adults:      adults,
		Children:    children,
		HoldSeconds: holdSeconds,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (h *ReservationHandler) Confirm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	detail, err := h.owned(ctx, req)
	if err != nil {
		return nil, err
	}
	var opts []service.ConfirmOption
	if txID := (fields{req}).str("transactionId"); txID != "" {
		opts = append(opts, service.WithTransactionID(txID))
	}
	if err := h.lifecycleSvc.Confirm(ctx, detail.ID, opts...); err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"reservationId": float64(detail.ID), "status": string(domain.ReservationStatusCompleted)})
}

func (h *ReservationHandler) Cancel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	detail, err := h.owned(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := h.lifecycleSvc.Cancel(ctx, detail.ID); err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"reservationId": float64(detail.ID), "status": string(domain.ReservationStatusCancelled)})
}

func (h *ReservationHandler) Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	detail, err := h.owned(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(detail)
}

// ListByUser lists the caller's reservations. Admins may pass another userId.
func (h *ReservationHandler) ListByUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := fields{req}
	userID, err := f.id("userId", false)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		userID = callerID
	}
	if userID != callerID && !IsAdminFromContext(ctx) {
		return nil, status.Error(codes.PermissionDenied, "admin role required to list other users")
	}
	page, err := f.num("page")
	if err != nil {
		return nil, err
	}
	size, err := f.num("size")
	if err != nil {
		return nil, err
	}

	list, err := h.querySvc.ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"reservations": list})
}

// owned resolves the reservationId field and hides reservations that belong
// to someone else unless the caller is an admin.
func (h *ReservationHandler) owned(ctx context.Context, req *structpb.Struct) (*domain.ReservationDetail, error) {
	callerID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := (fields{req}).id("reservationId", true)
	if err != nil {
		return nil, err
	}
	detail, err := h.querySvc.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	if detail.UserID != callerID && !IsAdminFromContext(ctx) {
		return nil, toStatus(domain.ErrReservationNotFound)
	}
	return detail, nil
}

// toStatus maps core errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidGuests):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, domain.ErrHoldExpired):
		return status.Error(codes.FailedPrecondition, "hold expired")
	case errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrCapacityBelowConsumed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrLockTimeout):
		return status.Error(codes.Unavailable, err.Error())
	default:
		logger.Error("RPC internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// toStruct renders v through its JSON form so both transports share field names.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return structpb.NewStruct(m)
}

// Largest magnitude a JSON number carries without losing integer precision.
const maxExactInt = 1 << 53

type fields struct {
	s *structpb.Struct
}

func (f fields) value(key string) *structpb.Value {
	if f.s == nil {
		return nil
	}
	return f.s.GetFields()[key]
}

func (f fields) str(key string) string {
	return f.value(key).GetStringValue()
}

func (f fields) date(key string) (time.Time, error) {
	d, err := domain.ParseDate(f.str(key))
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "%s must be YYYY-MM-DD", key)
	}
	return d, nil
}

func (f fields) id(key string, required bool) (int64, error) {
	v := f.value(key)
	if v == nil {
		if required {
			return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
		}
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", key)
	}
	if math.Abs(n.NumberValue) > maxExactInt {
		return 0, status.Errorf(codes.InvalidArgument, "%s is out of range", key)
	}
	return int64(n.NumberValue), nil
}

func (f fields) num(key string) (int, error) {
	n, err := f.id(key, false)
	return int(n), err
}
