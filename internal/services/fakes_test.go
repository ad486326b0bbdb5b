package services

import (
	"context"
	"sync"
	"time"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/internal/utils"
	"copool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stdout"})
	return log
}

// memRideRepo mirrors the conditional-write semantics of the Mongo ride
// repository: reserve and release check and mutate under one lock.
type memRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
}

func newMemRideRepo() *memRideRepo {
	return &memRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func cloneRide(r *models.Ride) *models.Ride {
	c := *r
	c.Reservations = append([]models.SeatReservation(nil), r.Reservations...)
	return &c
}

func (m *memRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	if ride.Status == "" {
		ride.Status = models.RideStatusOpen
	}
	m.rides[ride.ID] = cloneRide(ride)
	return nil
}

func (m *memRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRide(ride), nil
}

func (m *memRideRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["pickup_point"].(string); ok {
		ride.PickupPoint = v
	}
	if v, ok := updates["drop_point"].(string); ok {
		ride.DropPoint = v
	}
	if v, ok := updates["route_description"].(string); ok {
		ride.RouteDescription = v
	}
	if v, ok := updates["price_per_seat"].(float64); ok {
		ride.PricePerSeat = v
	}
	if v, ok := updates["ride_time"].(string); ok {
		ride.RideTime = v
	}
	return nil
}

func (m *memRideRepo) List(ctx context.Context, filter *interfaces.RideListFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Ride
	for _, ride := range m.rides {
		if filter != nil && filter.GiverID != nil && ride.GiverID != *filter.GiverID {
			continue
		}
		out = append(out, cloneRide(ride))
	}
	return out, int64(len(out)), nil
}

func (m *memRideRepo) ReserveSeats(ctx context.Context, id primitive.ObjectID, res models.SeatReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if ride.Status != models.RideStatusOpen && ride.Status != models.RideStatusFull {
		return ErrConflict
	}
	if ride.ReservationFor(res.RiderID) != nil {
		return ErrConflict
	}
	if ride.AvailableSeats < res.Seats {
		return ErrCapacityExceeded
	}
	res.CreatedAt = time.Now()
	ride.Reservations = append(ride.Reservations, res)
	ride.AvailableSeats -= res.Seats
	if ride.AvailableSeats == 0 && ride.Status == models.RideStatusOpen {
		ride.Status = models.RideStatusFull
	}
	return nil
}

func (m *memRideRepo) ReleaseSeats(ctx context.Context, id primitive.ObjectID, riderID primitive.ObjectID, seats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	for i, res := range ride.Reservations {
		if res.RiderID == riderID && res.Seats == seats {
			ride.Reservations = append(ride.Reservations[:i], ride.Reservations[i+1:]...)
			ride.AvailableSeats += seats
			if ride.Status == models.RideStatusFull && ride.AvailableSeats > 0 {
				ride.Status = models.RideStatusOpen
			}
			return nil
		}
	}
	return ErrNotFound
}

func (m *memRideRepo) CancelRide(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if ride.Status != models.RideStatusOpen && ride.Status != models.RideStatusFull {
		return ErrConflict
	}
	now := time.Now()
	ride.Status = models.RideStatusCancelled
	ride.CancelledAt = &now
	ride.Reservations = nil
	ride.AvailableSeats = ride.TotalSeats
	return nil
}

func (m *memRideRepo) CompleteRide(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if ride.Status != models.RideStatusOpen && ride.Status != models.RideStatusFull {
		return ErrConflict
	}
	now := time.Now()
	ride.Status = models.RideStatusCompleted
	ride.CompletedAt = &now
	return nil
}

func (m *memRideRepo) CountByDate(ctx context.Context, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, ride := range m.rides {
		if ride.RideDate == date && ride.Status != models.RideStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (m *memRideRepo) CountSeatsReservedOn(ctx context.Context, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var seats int64
	for _, ride := range m.rides {
		if ride.RideDate == date && ride.Status != models.RideStatusCancelled {
			seats += int64(ride.ReservedSeats())
		}
	}
	return seats, nil
}

type paymentKey struct {
	ride  primitive.ObjectID
	rider primitive.ObjectID
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[paymentKey]*models.Payment
	failOpen bool
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[paymentKey]*models.Payment)}
}

func (m *memPaymentRepo) Open(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOpen {
		return nil, ErrInternal
	}
	key := paymentKey{payment.RideID, payment.RiderID}
	if existing, ok := m.payments[key]; ok && !existing.Voided {
		c := *existing
		return &c, nil
	}
	p := *payment
	p.ID = primitive.NewObjectID()
	p.RiderStatus = models.RiderPaymentPending
	p.GiverStatus = models.GiverPaymentPending
	p.CreatedAt = time.Now()
	m.payments[key] = &p
	c := p
	return &c, nil
}

func (m *memPaymentRepo) GetByRideAndRider(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentKey{rideID, riderID}]
	if !ok || p.Voided {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memPaymentRepo) ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Payment
	for key, p := range m.payments {
		if key.ride == rideID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) SetRiderStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.RiderPaymentStatus, adminOverride bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentKey{rideID, riderID}]
	if !ok || p.Voided {
		return ErrNotFound
	}
	p.RiderStatus = status
	if adminOverride {
		p.AdminOverride = true
	}
	return nil
}

func (m *memPaymentRepo) SetGiverStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.GiverPaymentStatus, adminOverride bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentKey{rideID, riderID}]
	if !ok || p.Voided {
		return ErrNotFound
	}
	p.GiverStatus = status
	if adminOverride {
		p.AdminOverride = true
	}
	return nil
}

func (m *memPaymentRepo) Void(ctx context.Context, rideID, riderID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentKey{rideID, riderID}]
	if !ok || p.Voided {
		return ErrNotFound
	}
	now := time.Now()
	p.Voided = true
	p.VoidedAt = &now
	return nil
}

func (m *memPaymentRepo) VoidByRide(ctx context.Context, rideID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for key, p := range m.payments {
		if key.ride == rideID && !p.Voided {
			p.Voided = true
			p.VoidedAt = &now
		}
	}
	return nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages map[primitive.ObjectID][]*models.Message
	seqs     map[primitive.ObjectID]int64
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{
		messages: make(map[primitive.ObjectID][]*models.Message),
		seqs:     make(map[primitive.ObjectID]int64),
	}
}

func (m *memMessageRepo) Append(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[msg.RideID]++
	msg.ID = primitive.NewObjectID()
	msg.Seq = m.seqs[msg.RideID]
	msg.CreatedAt = time.Now()
	c := *msg
	m.messages[msg.RideID] = append(m.messages[msg.RideID], &c)
	return nil
}

func (m *memMessageRepo) Since(ctx context.Context, rideID primitive.ObjectID, lastSeq int64, limit int) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Message
	for _, msg := range m.messages[rideID] {
		if msg.Seq > lastSeq {
			c := *msg
			out = append(out, &c)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memMessageRepo) CountByRide(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.messages[rideID])), nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *memUserRepo) addUser(name string) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.users[id] = &models.User{ID: id, Name: name, Email: name + "@example.com", Role: models.UserRoleUser}
	return id
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if name, ok := updates["name"].(string); ok {
		u.Name = name
	}
	if upi, ok := updates["upi_id"].(string); ok {
		u.UPIID = upi
	}
	if role, ok := updates["role"].(models.UserRole); ok {
		u.Role = role
	}
	return nil
}

func (m *memUserRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (m *memUserRepo) IncrementCarbonCredits(ctx context.Context, id primitive.ObjectID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.CarbonCredits += delta
	return nil
}

type memCorridorRepo struct {
	mu          sync.Mutex
	corridors   map[primitive.ObjectID]*models.Corridor
	assignments map[primitive.ObjectID][]primitive.ObjectID // user -> corridors
}

func newMemCorridorRepo() *memCorridorRepo {
	return &memCorridorRepo{
		corridors:   make(map[primitive.ObjectID]*models.Corridor),
		assignments: make(map[primitive.ObjectID][]primitive.ObjectID),
	}
}

func (m *memCorridorRepo) Create(ctx context.Context, corridor *models.Corridor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	corridor.ID = primitive.NewObjectID()
	c := *corridor
	m.corridors[corridor.ID] = &c
	return nil
}

func (m *memCorridorRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Corridor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	corridor, ok := m.corridors[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *corridor
	return &c, nil
}

func (m *memCorridorRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (m *memCorridorRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.corridors, id)
	return nil
}

func (m *memCorridorRepo) List(ctx context.Context, cityID *primitive.ObjectID, activeOnly bool) ([]*models.Corridor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Corridor
	for _, corridor := range m.corridors {
		if cityID != nil && corridor.CityID != *cityID {
			continue
		}
		if activeOnly && !corridor.IsActive {
			continue
		}
		c := *corridor
		out = append(out, &c)
	}
	return out, nil
}

func (m *memCorridorRepo) Assign(ctx context.Context, userID, corridorID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.assignments[userID] {
		if id == corridorID {
			return ErrConflict
		}
	}
	m.assignments[userID] = append(m.assignments[userID], corridorID)
	return nil
}

func (m *memCorridorRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Corridor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Corridor
	for _, id := range m.assignments[userID] {
		if corridor, ok := m.corridors[id]; ok {
			c := *corridor
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memCorridorRepo) HasAccess(ctx context.Context, userID, corridorID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.assignments[userID] {
		if id == corridorID {
			return true, nil
		}
	}
	return false, nil
}

type memCityRepo struct {
	mu     sync.Mutex
	cities map[primitive.ObjectID]*models.City
}

func newMemCityRepo() *memCityRepo {
	return &memCityRepo{cities: make(map[primitive.ObjectID]*models.City)}
}

func (m *memCityRepo) Create(ctx context.Context, city *models.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	city.ID = primitive.NewObjectID()
	if city.Status == "" {
		city.Status = models.CityStatusActive
	}
	c := *city
	m.cities[city.ID] = &c
	return nil
}

func (m *memCityRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	city, ok := m.cities[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *city
	return &c, nil
}

func (m *memCityRepo) List(ctx context.Context) ([]*models.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.City
	for _, city := range m.cities {
		c := *city
		out = append(out, &c)
	}
	return out, nil
}

func (m *memCityRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CityStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	city, ok := m.cities[id]
	if !ok {
		return ErrNotFound
	}
	city.Status = status
	return nil
}

type memVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (m *memVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle.ID = primitive.NewObjectID()
	c := *vehicle
	m.vehicles[vehicle.ID] = &c
	return nil
}

func (m *memVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *vehicle
	return &c, nil
}

func (m *memVehicleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (m *memVehicleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vehicles, id)
	return nil
}

func (m *memVehicleRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Vehicle
	for _, vehicle := range m.vehicles {
		if vehicle.UserID == userID {
			c := *vehicle
			out = append(out, &c)
		}
	}
	return out, nil
}

type memCreditRepo struct {
	mu      sync.Mutex
	entries []*models.CarbonCredit
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{}
}

func (m *memCreditRepo) Award(ctx context.Context, entry *models.CarbonCredit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	c := *entry
	m.entries = append(m.entries, &c)
	return nil
}

func (m *memCreditRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.CarbonCredit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Newest first, matching the repository sort.
	var out []*models.CarbonCredit
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			c := *m.entries[i]
			out = append(out, &c)
		}
	}
	return out, nil
}
