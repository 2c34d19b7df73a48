package registration

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/Domenick1991/checkin/internal/remote"
)

// RegisterHandlers wires the service's capabilities into the bus rpc server.
func RegisterHandlers(srv *bus.Server, svc *Service) {
	srv.Handle(remote.KindReserveSeat, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var req remote.ReserveSeatRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		res, err := svc.Reserve(ctx, ReserveInput{
			SessionToken: req.SessionToken,
			FlightLegID:  req.FlightLegID,
			PassengerID:  req.PassengerID,
			SeatNumber:   req.SeatNumber,
		})
		if err != nil {
			return nil, err
		}
		return remote.ReserveSeatReply{
			FlightLegID: res.FlightLegID,
			SeatNumber:  res.SeatNumber,
			PassengerID: res.PassengerID,
			ReservedAt:  res.ReservedAt,
		}, nil
	})

	srv.Handle(remote.KindRegisterFree, registerHandler(svc, domain.RegistrationFree))
	srv.Handle(remote.KindRegisterPaid, registerHandler(svc, domain.RegistrationPaid))

	srv.Handle(remote.KindReservationGet, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var req remote.ReservationGetRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		res, err := svc.GetReservation(ctx, req.FlightLegID, req.SeatNumber)
		if err != nil {
			return nil, err
		}
		return remote.ReserveSeatReply{
			FlightLegID: res.FlightLegID,
			SeatNumber:  res.SeatNumber,
			PassengerID: res.PassengerID,
			ReservedAt:  res.ReservedAt,
		}, nil
	})

	srv.Handle(remote.KindReservationList, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var req remote.ReservationListRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		reservations, err := svc.ListReservations(ctx, req.FlightLegID)
		if err != nil {
			return nil, err
		}
		reply := remote.ReservationListReply{Reservations: make([]remote.ReserveSeatReply, 0, len(reservations))}
		for _, res := range reservations {
			reply.Reservations = append(reply.Reservations, remote.ReserveSeatReply{
				FlightLegID: res.FlightLegID,
				SeatNumber:  res.SeatNumber,
				PassengerID: res.PassengerID,
				ReservedAt:  res.ReservedAt,
			})
		}
		return reply, nil
	})
}

func registerHandler(svc *Service, kind domain.RegistrationKind) bus.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var req remote.RegisterRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		rec, err := svc.Register(ctx, kind, RegisterInput{
			SessionToken: req.SessionToken,
			FlightLegID:  req.FlightLegID,
			PassengerID:  req.PassengerID,
			SeatNumber:   req.SeatNumber,
		})
		if err != nil {
			return nil, err
		}
		return remote.RegisterReply{
			IsPaid:       rec.IsPaid,
			SeatNumber:   rec.SeatNumber,
			RegisteredAt: rec.RegisteredAt,
		}, nil
	}
}
