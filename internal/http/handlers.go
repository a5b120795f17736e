package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/models"
	"github.com/example/ride-ledger/internal/payments"
	"github.com/example/ride-ledger/internal/stream"
)

// Deps carries the collaborators the API server needs. Mirror is optional.
type Deps struct {
	Core            *ledger.Core
	Stream          *stream.Registry
	Mirror          *payments.Mirror
	Logger          *slog.Logger
	MaxListPageSize int
}

type Server struct {
	core    *ledger.Core
	stream  *stream.Registry
	mirror  *payments.Mirror
	logger  *slog.Logger
	maxPage int
	mux     *mux.Router
}

func NewServer(d Deps) *Server {
	if d.MaxListPageSize <= 0 {
		d.MaxListPageSize = 500
	}
	s := &Server{
		core:    d.Core,
		stream:  d.Stream,
		mirror:  d.Mirror,
		logger:  d.Logger,
		maxPage: d.MaxListPageSize,
		mux:     mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/rides", s.handleCreateRide).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides", s.handleListRides).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/{id}", s.handleGetRide).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/{id}/reservations", s.handleReserveSeats).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{id}/reservations/cancel", s.handleCancelReservation).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{id}/finish", s.handleFinishRide).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{id}/cancel", s.handleCancelRide).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{id}/ratings", s.handleGiveRating).Methods("POST")
	s.mux.HandleFunc("/api/v1/ratings/{principal}", s.handleGetAverageRating).Methods("GET")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/events", s.handleEventStream)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// caller extracts the opaque principal the environment attached to the
// request. The ledger never authenticates it.
func caller(r *http.Request) (models.Principal, bool) {
	p := r.Header.Get("X-Principal")
	return models.Principal(p), p != ""
}

func rideID(r *http.Request) (models.RideID, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, ledger.ErrNotFound
	}
	return models.RideID(id), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrNoSuchReservation),
		errors.Is(err, ledger.ErrNoRatings):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrRideNotOpen),
		errors.Is(err, ledger.ErrRideNotFinished),
		errors.Is(err, ledger.ErrTooEarly),
		errors.Is(err, ledger.ErrTooLate),
		errors.Is(err, ledger.ErrInsufficientSeats),
		errors.Is(err, ledger.ErrAlreadyRated):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidParameters),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidStars),
		errors.Is(err, ledger.ErrPaymentMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type createRideRequest struct {
	StartPlace   string    `json:"start_place"`
	Destination  string    `json:"destination"`
	Date         time.Time `json:"date"`
	PricePerSeat int64     `json:"price_per_seat"`
	TotalSeats   uint      `json:"total_seats"`
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		http.Error(w, "missing X-Principal", http.StatusBadRequest)
		return
	}
	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := s.core.CreateRide(req.StartPlace, req.Destination, req.Date, req.PricePerSeat, req.TotalSeats, p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ride_id": id})
}

func (s *Server) handleGetRide(w http.ResponseWriter, r *http.Request) {
	id, err := rideID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ride, err := s.core.GetRide(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) handleListRides(w http.ResponseWriter, r *http.Request) {
	rides := s.core.ListRides()
	// creation order; ?offset and ?limit window the unbounded list
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	if offset > len(rides) {
		offset = len(rides)
	}
	limit := s.maxPage
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	end := offset + limit
	if end > len(rides) {
		end = len(rides)
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(rides), "rides": rides[offset:end]})
}

type reserveRequest struct {
	Seats   uint  `json:"seats"`
	Payment int64 `json:"payment"`
}

func (s *Server) handleReserveSeats(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		http.Error(w, "missing X-Principal", http.StatusBadRequest)
		return
	}
	id, err := rideID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.core.ReserveSeats(id, req.Seats, req.Payment, p); err != nil {
		s.writeError(w, err)
		return
	}
	if s.mirror != nil {
		s.mirror.HoldEscrow(r.Context(), id, p, req.Payment)
	}
	w.WriteHeader(http.StatusNoContent)
}

type cancelReservationRequest struct {
	Seats uint `json:"seats"`
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		http.Error(w, "missing X-Principal", http.StatusBadRequest)
		return
	}
	id, err := rideID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req cancelReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ride, err := s.core.GetRide(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.core.CancelReservation(id, req.Seats, p); err != nil {
		s.writeError(w, err)
		return
	}
	if s.mirror != nil {
		s.mirror.RefundEscrow(r.Context(), id, p, int64(req.Seats)*ride.PricePerSeat)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishRide(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		http.Error(w, "missing X-Principal", http.StatusBadRequest)
		return
	}
	id, err := rideID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.core.FinishRide(id, p); err != nil {
		s.writeError(w, err)
		return
	}
	if s.mirror != nil {
		s.mirror.SettleRide(r.Context(), id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		http.Error(w, "missing X-Principal", http.StatusBadRequest)
		return
	}
	id, err := rideID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.core.CancelRide(id, p); err != nil {
		s.writeError(w, err)
		return
	}
	if s.mirror != nil {
		s.mirror.VoidRide(r.Context(), id)
	}
	w.WriteHeader(http.StatusNoContent)
}

type ratingRequest struct {
	Stars int `json:"stars"`
}

func (s *Server) handleGiveRating(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		http.Error(w, "missing X-Principal", http.StatusBadRequest)
		return
	}
	id, err := rideID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.core.GiveRating(id, req.Stars, p); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetAverageRating(w http.ResponseWriter, r *http.Request) {
	p := models.Principal(mux.Vars(r)["principal"])
	avg, err := s.core.AverageRating(p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"principal": p, "average_x100": avg})
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	sess := s.stream.Add(conn)
	// observers only receive; the read loop just detects disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.stream.Remove(sess)
				return
			}
		}
	}()
}
