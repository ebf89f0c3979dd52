package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	accounterrors "shubakar/internal/accounts/errors"
	bookingserrors "shubakar/internal/bookings/errors"
	chaterrors "shubakar/internal/chat/errors"
	eventerrors "shubakar/internal/events/errors"
	vendorerrors "shubakar/internal/vendors/errors"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores for driving the whole router without a database. Documents
// are copied through BSON on every read and write, the way a real round trip
// would.

func clone[T any](doc *T) *T {
	raw, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

// applySet mimics a top level $set.
func applySet[T any](doc *T, set bson.M) *T {
	raw, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	for k, v := range set {
		m[k] = v
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		panic(err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

type memoryAccounts struct {
	mongotx.NoopTransactionManager
	mu   sync.Mutex
	byID map[string]*model.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[string]*model.Account{}}
}

func (m *memoryAccounts) Create(ctx context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return fmt.Errorf("%w: %s", accounterrors.ErrDuplicateEmail, a.Email)
		}
	}
	a.ID = newID()
	a.CreatedAt = mongotx.Now()
	m.byID[a.ID] = clone(a)
	return nil
}

func (m *memoryAccounts) FindByID(ctx context.Context, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", accounterrors.ErrNotFound, id)
	}
	return clone(a), nil
}

func (m *memoryAccounts) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", accounterrors.ErrNotFound, email)
}

func (m *memoryAccounts) FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Account
	for _, id := range ids {
		if a, ok := m.byID[id]; ok {
			c := clone(a)
			c.PasswordHash = ""
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryAccounts) update(id string, set bson.M) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", accounterrors.ErrNotFound, id)
	}
	updated := applySet(a, set)
	m.byID[id] = updated
	return clone(updated), nil
}

func (m *memoryAccounts) UpdateName(ctx context.Context, id, name string) (*model.Account, error) {
	return m.update(id, bson.M{"name": name})
}

func (m *memoryAccounts) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := m.update(id, bson.M{"password": hash})
	return err
}

func (m *memoryAccounts) LinkVendorProfile(ctx context.Context, id, profileID, vendorStatus string) error {
	_, err := m.update(id, bson.M{"vendorProfile": profileID, "vendorStatus": vendorStatus})
	return err
}

func (m *memoryAccounts) SetVendorStatus(ctx context.Context, id, vendorStatus string) error {
	_, err := m.update(id, bson.M{"vendorStatus": vendorStatus})
	return err
}

func (m *memoryAccounts) ResetToCustomer(ctx context.Context, id string) error {
	_, err := m.update(id, bson.M{
		"role":          model.RoleCustomer,
		"vendorStatus":  model.VendorStatusNotVendor,
		"vendorProfile": "",
	})
	return err
}

func (m *memoryAccounts) SetRole(ctx context.Context, id, role string) error {
	_, err := m.update(id, bson.M{"role": role})
	return err
}

type memoryVendors struct {
	mongotx.NoopTransactionManager
	mu    sync.Mutex
	byID  map[string]*model.VendorProfile
	order []string
}

func newMemoryVendors() *memoryVendors {
	return &memoryVendors{byID: map[string]*model.VendorProfile{}}
}

func (m *memoryVendors) Create(ctx context.Context, p *model.VendorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.UserID == p.UserID {
			return fmt.Errorf("%w: user %s", vendorerrors.ErrDuplicate, p.UserID)
		}
	}
	p.ID = newID()
	p.CreatedAt = mongotx.Now()
	m.byID[p.ID] = clone(p)
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memoryVendors) FindByID(ctx context.Context, id string) (*model.VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", vendorerrors.ErrNotFound, id)
	}
	return clone(p), nil
}

func (m *memoryVendors) FindByUserID(ctx context.Context, userID string) (*model.VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.UserID == userID {
			return clone(p), nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", vendorerrors.ErrNotFound, userID)
}

func (m *memoryVendors) FindByIDs(ctx context.Context, ids []string) ([]*model.VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.VendorProfile
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (m *memoryVendors) FindAll(ctx context.Context, limit int, offset int64) ([]*model.VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.VendorProfile{}
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, clone(m.byID[m.order[i]]))
	}
	if offset >= int64(len(out)) {
		return []*model.VendorProfile{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryVendors) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *memoryVendors) Search(ctx context.Context, f model.VendorSearchFilter) ([]*model.VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.VendorProfile{}
	for _, id := range m.order {
		p := m.byID[id]
		if !p.IsApproved {
			continue
		}
		if f.Service != "" && !contains(p.Services, f.Service) {
			continue
		}
		if f.City != "" && !strings.Contains(strings.ToLower(p.Location.City), strings.ToLower(f.City)) {
			continue
		}
		if f.MinPrice != nil && p.PriceRange.Min < *f.MinPrice {
			continue
		}
		out = append(out, clone(p))
	}
	return out, nil
}

func (m *memoryVendors) Update(ctx context.Context, id string, set bson.M) (*model.VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", vendorerrors.ErrNotFound, id)
	}
	updated := applySet(p, set)
	m.byID[id] = updated
	return clone(updated), nil
}

func (m *memoryVendors) SetApproved(ctx context.Context, id string, approved bool) (*model.VendorProfile, error) {
	return m.Update(ctx, id, bson.M{"isApproved": approved})
}

func (m *memoryVendors) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", vendorerrors.ErrNotFound, id)
	}
	delete(m.byID, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type memoryBookings struct {
	mongotx.NoopTransactionManager
	mu   sync.Mutex
	byID map[string]*model.Booking
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{byID: map[string]*model.Booking{}}
}

func (m *memoryBookings) Create(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = newID()
	now := mongotx.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	m.byID[b.ID] = clone(b)
	return nil
}

func (m *memoryBookings) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return clone(b), nil
}

func (m *memoryBookings) matching(f model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range m.byID {
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.VendorID != "" && b.VendorID != f.VendorID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memoryBookings) Find(ctx context.Context, f model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.matching(f)
	if offset >= int64(len(out)) {
		return []*model.Booking{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryBookings) Count(ctx context.Context, f model.BookingFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(f))), nil
}

func (m *memoryBookings) conditional(id string, match func(*model.Booking) bool, set bson.M) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	if !match(b) {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrStatusChanged, id)
	}
	set["updatedAt"] = mongotx.Now()
	updated := applySet(b, set)
	m.byID[id] = updated
	return clone(updated), nil
}

func (m *memoryBookings) UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error) {
	return m.conditional(id, func(b *model.Booking) bool { return b.Status == from }, bson.M{"status": to})
}

func (m *memoryBookings) MarkPaid(ctx context.Context, id string, p model.PaymentRecord) (*model.Booking, error) {
	return m.conditional(id, func(b *model.Booking) bool {
		return b.Status == model.BookingStatusAccepted && b.PaymentStatus != model.PaymentStatusPaid
	}, bson.M{
		"paymentStatus": model.PaymentStatusPaid,
		"transactionId": p.TransactionID,
		"paymentMethod": p.Method,
		"paidAt":        p.PaidAt,
	})
}

type memoryEvents struct {
	mu   sync.Mutex
	byID map[string]*model.Event
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{byID: map[string]*model.Event{}}
}

func (m *memoryEvents) Create(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = newID()
	e.CreatedAt = mongotx.Now()
	m.byID[e.ID] = clone(e)
	return nil
}

func (m *memoryEvents) FindByID(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", eventerrors.ErrNotFound, id)
	}
	return clone(e), nil
}

func (m *memoryEvents) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, id := range ids {
		if e, ok := m.byID[id]; ok {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

func (m *memoryEvents) FindByUser(ctx context.Context, userID string) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Event{}
	for _, e := range m.byID {
		if e.UserID == userID {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memoryEvents) Update(ctx context.Context, id, userID string, set bson.M) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok || e.UserID != userID {
		return nil, fmt.Errorf("%w: %s", eventerrors.ErrNotFound, id)
	}
	updated := applySet(e, set)
	m.byID[id] = updated
	return clone(updated), nil
}

func (m *memoryEvents) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok || e.UserID != userID {
		return fmt.Errorf("%w: %s", eventerrors.ErrNotFound, id)
	}
	delete(m.byID, id)
	return nil
}

type memoryMessages struct {
	mu   sync.Mutex
	byID map[string]*model.Message
}

func newMemoryMessages() *memoryMessages {
	return &memoryMessages{byID: map[string]*model.Message{}}
}

func (m *memoryMessages) Create(ctx context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[msg.ID]; ok {
		return fmt.Errorf("%w: %s", chaterrors.ErrDuplicate, msg.ID)
	}
	// Mongo keeps dates to the millisecond.
	stored := clone(msg)
	stored.CreatedAt = stored.CreatedAt.Truncate(time.Millisecond)
	m.byID[msg.ID] = stored
	return nil
}

func (m *memoryMessages) FindByBooking(ctx context.Context, bookingID string) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Message{}
	for _, msg := range m.byID {
		if msg.BookingID == bookingID {
			out = append(out, clone(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
