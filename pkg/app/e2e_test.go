package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shubakar/internal/chat/relay"
	"shubakar/pkg/client"
	"shubakar/pkg/config"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		MongoDatabaseName:    "shubakar-test",
		JWTSecret:            "a-very-long-test-secret",
		JWTExpiry:            time.Hour,
		JWTIssuer:            "shubakar-test",
		CookieName:           "jwt",
		BcryptCost:           4,
		PaymentDelay:         10 * time.Millisecond,
		BudgetServiceURL:     "http://127.0.0.1:1",
		BudgetServiceTimeout: time.Second,
		RateLimitRequests:    1000,
		RateLimitWindow:      time.Minute,
		RequestTimeout:       5 * time.Second,
		IdempotencyTTL:       time.Minute,
		MaxRequestSize:       1 << 20,
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		IdleTimeout:          5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		ChatPingInterval:     time.Second,
		Log:                  logger.Nop(),
		Client:               client.NewClient(),
	}
}

type marketplace struct {
	server  *httptest.Server
	modules *Modules
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()
	cfg := testConfig()
	stores := Stores{
		Accounts: newMemoryAccounts(),
		Vendors:  newMemoryVendors(),
		Bookings: newMemoryBookings(),
		Events:   newMemoryEvents(),
		Messages: newMemoryMessages(),
	}
	registry := prometheus.NewRegistry()
	modules, err := NewModules(cfg, stores, Messaging{}, registry)
	require.NoError(t, err)

	app := NewApplication(cfg, registry)
	app.SetApp(modules.Health, modules.Handlers...)
	server := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		modules.Hub.CloseAll()
		server.Close()
		app.idempotencyStore.Stop()
		app.rateLimiter.Stop()
	})
	return &marketplace{server: server, modules: modules}
}

func (m *marketplace) http(token string) *client.HttpClient {
	return client.NewHttpClient(m.server.URL).WithToken(token)
}

type actor struct {
	token    string
	account  *model.Account
	auth     *client.AuthClient
	vendors  *client.VendorClient
	bookings *client.BookingClient
	payments *client.PaymentClient
}

func (m *marketplace) actor(result *client.AuthResult) *actor {
	c := m.http(result.Token)
	return &actor{
		token:    result.Token,
		account:  result.User,
		auth:     client.NewAuthClient(c),
		vendors:  client.NewVendorClient(c),
		bookings: client.NewBookingClient(c),
		payments: client.NewPaymentClient(c),
	}
}

func (m *marketplace) register(t *testing.T, req *model.RegisterRequest) *actor {
	t.Helper()
	result, err := client.NewAuthClient(m.http("")).Register(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	return m.actor(result)
}

type cast struct {
	admin   *actor
	alice   *actor
	bob     *actor
	profile *model.VendorProfile
}

// onboard seeds an admin, registers a customer and an approved catering vendor.
func onboard(t *testing.T, m *marketplace) *cast {
	t.Helper()
	ctx := context.Background()

	_, err := m.modules.Accounts.EnsureSuperAdmin(ctx, "Root Admin", "root@shubakar.test", "admin-secret")
	require.NoError(t, err)
	login, err := client.NewAuthClient(m.http("")).Login(ctx, "root@shubakar.test", "admin-secret")
	require.NoError(t, err)
	admin := m.actor(login)
	assert.Equal(t, model.RoleSuperAdmin, admin.account.Role)

	alice := m.register(t, &model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@shubakar.test",
		Password: "alice-secret",
	})
	assert.Equal(t, model.RoleCustomer, alice.account.Role)

	bob := m.register(t, &model.RegisterRequest{
		Name:        "Bob",
		Email:       "bob@shubakar.test",
		Password:    "bob-secret",
		Role:        model.RoleVendor,
		CompanyName: "Bob Events",
		Services:    []string{model.ServiceCatering},
	})
	assert.Equal(t, model.RoleVendor, bob.account.Role)
	assert.Equal(t, model.VendorStatusPending, bob.account.VendorStatus)

	profile, err := bob.vendors.OwnProfile(ctx)
	require.NoError(t, err)
	assert.False(t, profile.IsApproved)

	hidden, err := alice.vendors.Search(ctx, model.VendorSearchFilter{Service: model.ServiceCatering})
	require.NoError(t, err)
	assert.Empty(t, hidden, "unapproved vendors stay out of search")

	approved, err := admin.vendors.Approve(ctx, profile.ID, model.VendorStatusApproved)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	me, err := bob.auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.VendorStatusApproved, me.VendorStatus)

	return &cast{admin: admin, alice: alice, bob: bob, profile: approved}
}

func requireAPIStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected an API error, got %v", err)
	assert.Equal(t, status, apiErr.StatusCode)
}

func TestMarketplace_BookPayInvoice(t *testing.T) {
	m := newMarketplace(t)
	c := onboard(t, m)
	ctx := context.Background()

	found, err := c.alice.vendors.Search(ctx, model.VendorSearchFilter{Service: model.ServiceCatering})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.profile.ID, found[0].ID)
	assert.Equal(t, "Bob Events", found[0].CompanyName)

	booking, err := c.alice.bookings.Create(ctx, &model.CreateBookingRequest{
		VendorID:    c.profile.ID,
		ServiceType: model.ServiceCatering,
		Date:        "2025-12-01",
		Price:       10000,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, model.PaymentStatusPending, booking.PaymentStatus)

	// Paying before the vendor accepts is refused.
	_, err = c.alice.payments.Pay(ctx, &model.PayRequest{BookingID: booking.ID}, "")
	requireAPIStatus(t, err, http.StatusBadRequest)

	vendorView, err := c.bob.bookings.List(ctx)
	require.NoError(t, err)
	require.Len(t, vendorView, 1)
	assert.Equal(t, booking.ID, vendorView[0].ID)

	// Only the vendor side may accept.
	_, err = c.alice.bookings.UpdateStatus(ctx, booking.ID, model.BookingStatusAccepted)
	requireAPIStatus(t, err, http.StatusForbidden)

	accepted, err := c.bob.bookings.UpdateStatus(ctx, booking.ID, model.BookingStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusAccepted, accepted.Status)

	receipt, err := c.alice.payments.Pay(ctx, &model.PayRequest{BookingID: booking.ID, Method: "card"}, "")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, receipt.PaymentStatus)
	assert.NotEmpty(t, receipt.TransactionID)
	assert.Equal(t, float64(10000), receipt.Amount)

	again, err := c.alice.payments.Pay(ctx, &model.PayRequest{BookingID: booking.ID, Method: "card"}, "")
	require.NoError(t, err)
	assert.Equal(t, receipt.TransactionID, again.TransactionID, "a second payment returns the stored transaction")

	invoice, err := c.alice.payments.Invoice(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(10000), invoice.Amount)
	assert.Equal(t, model.InvoiceStatusPaid, invoice.Status)
	assert.Equal(t, receipt.TransactionID, invoice.TransactionID)
	assert.Equal(t, model.ServiceCatering, invoice.Service)
	require.NotNil(t, invoice.Vendor)
	assert.Equal(t, "Bob Events", invoice.Vendor.CompanyName)

	vendorInvoice, err := c.bob.payments.Invoice(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceID, vendorInvoice.InvoiceID)
}

func TestMarketplace_RejectedBookingCannotBePaid(t *testing.T) {
	m := newMarketplace(t)
	c := onboard(t, m)
	ctx := context.Background()

	booking, err := c.alice.bookings.Create(ctx, &model.CreateBookingRequest{
		VendorID:    c.profile.ID,
		ServiceType: model.ServiceCatering,
		Date:        "2025-12-01",
		Price:       2500,
	})
	require.NoError(t, err)

	rejected, err := c.bob.bookings.UpdateStatus(ctx, booking.ID, model.BookingStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusRejected, rejected.Status)

	_, err = c.alice.payments.Pay(ctx, &model.PayRequest{BookingID: booking.ID}, "")
	requireAPIStatus(t, err, http.StatusBadRequest)

	_, err = c.alice.payments.Invoice(ctx, booking.ID)
	requireAPIStatus(t, err, http.StatusBadRequest)

	// Terminal bookings do not move again.
	_, err = c.bob.bookings.UpdateStatus(ctx, booking.ID, model.BookingStatusAccepted)
	requireAPIStatus(t, err, http.StatusBadRequest)
}

func TestMarketplace_IdempotentPaymentReplay(t *testing.T) {
	m := newMarketplace(t)
	c := onboard(t, m)
	ctx := context.Background()

	booking, err := c.alice.bookings.Create(ctx, &model.CreateBookingRequest{
		VendorID:    c.profile.ID,
		ServiceType: model.ServiceCatering,
		Date:        "2025-12-01",
		Price:       500,
	})
	require.NoError(t, err)
	_, err = c.bob.bookings.UpdateStatus(ctx, booking.ID, model.BookingStatusAccepted)
	require.NoError(t, err)

	first, err := c.alice.payments.Pay(ctx, &model.PayRequest{BookingID: booking.ID}, "pay-once")
	require.NoError(t, err)
	replayed, err := c.alice.payments.Pay(ctx, &model.PayRequest{BookingID: booking.ID}, "pay-once")
	require.NoError(t, err)
	assert.Equal(t, first.TransactionID, replayed.TransactionID)
}

func TestMarketplace_ProtectedRoutesRequireToken(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()

	_, err := client.NewAuthClient(m.http("")).Me(ctx)
	requireAPIStatus(t, err, http.StatusUnauthorized)

	_, err = client.NewBookingClient(m.http("not-a-token")).List(ctx)
	requireAPIStatus(t, err, http.StatusUnauthorized)

	resp, err := m.http("").GET(ctx, "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = m.http("").GET(ctx, "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (m *marketplace) dialChat(token string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(m.server.URL, "http") + "/ws/chat"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func (m *marketplace) chatConn(t *testing.T, a *actor) *websocket.Conn {
	t.Helper()
	conn, _, err := m.dialChat(a.token)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(relay.Frame{Event: event, Data: raw}))
}

func readFrame(t *testing.T, conn *websocket.Conn) relay.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame relay.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func joinRoom(t *testing.T, conn *websocket.Conn, bookingID string) {
	t.Helper()
	sendFrame(t, conn, relay.EventJoinRoom, relay.JoinRoom{BookingID: bookingID})
	frame := readFrame(t, conn)
	require.Equal(t, relay.EventJoined, frame.Event, string(frame.Data))
}

// readSent collects the echo and the ack a sender gets, in whichever order
// they arrive.
func readSent(t *testing.T, conn *websocket.Conn) (relay.ReceivedMessage, relay.MessageAck) {
	t.Helper()
	var (
		got relay.ReceivedMessage
		ack relay.MessageAck
	)
	seen := map[string]bool{}
	for len(seen) < 2 {
		frame := readFrame(t, conn)
		switch frame.Event {
		case relay.EventReceiveMessage:
			require.NoError(t, json.Unmarshal(frame.Data, &got))
		case relay.EventMessageAck:
			require.NoError(t, json.Unmarshal(frame.Data, &ack))
		default:
			t.Fatalf("unexpected %s frame: %s", frame.Event, frame.Data)
		}
		seen[frame.Event] = true
	}
	return got, ack
}

func readReceived(t *testing.T, conn *websocket.Conn) relay.ReceivedMessage {
	t.Helper()
	frame := readFrame(t, conn)
	require.Equal(t, relay.EventReceiveMessage, frame.Event, string(frame.Data))
	var got relay.ReceivedMessage
	require.NoError(t, json.Unmarshal(frame.Data, &got))
	return got
}

func TestMarketplace_ChatOverWebsocket(t *testing.T) {
	m := newMarketplace(t)
	c := onboard(t, m)
	ctx := context.Background()

	booking, err := c.alice.bookings.Create(ctx, &model.CreateBookingRequest{
		VendorID:    c.profile.ID,
		ServiceType: model.ServiceCatering,
		Date:        "2025-12-01",
		Price:       1200,
	})
	require.NoError(t, err)

	aliceConn := m.chatConn(t, c.alice)
	bobConn := m.chatConn(t, c.bob)
	joinRoom(t, aliceConn, booking.ID)
	joinRoom(t, bobConn, booking.ID)

	sendFrame(t, aliceConn, relay.EventSendMessage, relay.SendMessage{
		BookingID: booking.ID,
		Content:   "Can you do a vegan menu?",
		ClientRef: "draft-1",
	})
	echo, ack := readSent(t, aliceConn)
	assert.Equal(t, "draft-1", ack.ClientRef)
	assert.Equal(t, booking.ID, ack.BookingID)
	assert.False(t, ack.Queued)
	assert.Equal(t, ack.ID, echo.ID)
	assert.Equal(t, "Can you do a vegan menu?", echo.Content)

	atBob := readReceived(t, bobConn)
	assert.Equal(t, ack.ID, atBob.ID)
	assert.Equal(t, booking.ID, atBob.BookingID)
	assert.Equal(t, "Can you do a vegan menu?", atBob.Content)
	require.NotNil(t, atBob.Sender)
	assert.Equal(t, "Alice", atBob.Sender.Name)

	sendFrame(t, bobConn, relay.EventSendMessage, relay.SendMessage{
		BookingID: booking.ID,
		Content:   "Yes, fully vegan.",
	})
	_, reply := readSent(t, bobConn)
	atAlice := readReceived(t, aliceConn)
	assert.Equal(t, reply.ID, atAlice.ID)
	require.NotNil(t, atAlice.Sender)
	assert.Equal(t, "Bob", atAlice.Sender.Name)

	resp, err := m.http(c.alice.token).GET(ctx, "/api/v1/chat/"+booking.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var history struct {
		Results  int                  `json:"results"`
		Messages []*model.MessageView `json:"messages"`
	}
	require.NoError(t, resp.DecodeData(&history))
	require.Equal(t, 2, history.Results)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, ack.ID, history.Messages[0].ID)
	assert.Equal(t, c.alice.account.ID, history.Messages[0].SenderID)
	assert.Equal(t, "Alice", history.Messages[0].Sender.Name)
	assert.Equal(t, reply.ID, history.Messages[1].ID)
	assert.Equal(t, c.bob.account.ID, history.Messages[1].SenderID)
	assert.Equal(t, "Bob", history.Messages[1].Sender.Name)
}

func TestMarketplace_ChatRefusesStrangers(t *testing.T) {
	m := newMarketplace(t)
	c := onboard(t, m)
	ctx := context.Background()

	booking, err := c.alice.bookings.Create(ctx, &model.CreateBookingRequest{
		VendorID:    c.profile.ID,
		ServiceType: model.ServiceCatering,
		Date:        "2025-12-01",
		Price:       800,
	})
	require.NoError(t, err)

	_, resp, err := m.dialChat("")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	carol := m.register(t, &model.RegisterRequest{
		Name:     "Carol",
		Email:    "carol@shubakar.test",
		Password: "carol-secret",
	})
	carolConn := m.chatConn(t, carol)
	sendFrame(t, carolConn, relay.EventJoinRoom, relay.JoinRoom{BookingID: booking.ID})
	refused := readFrame(t, carolConn)
	assert.Equal(t, relay.EventError, refused.Event)

	sendFrame(t, carolConn, relay.EventSendMessage, relay.SendMessage{BookingID: booking.ID, Content: "hello?"})
	failed := readFrame(t, carolConn)
	assert.Equal(t, relay.EventMessageError, failed.Event)

	history, err := m.http(carol.token).GET(ctx, "/api/v1/chat/"+booking.ID)
	require.NoError(t, err)
	assert.NotEqual(t, http.StatusOK, history.StatusCode)

	own, err := m.http(c.alice.token).GET(ctx, "/api/v1/chat/"+booking.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, own.StatusCode)
	var empty struct {
		Results int `json:"results"`
	}
	require.NoError(t, own.DecodeData(&empty))
	assert.Zero(t, empty.Results, "refused sends are never stored")
}
