package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"logitrack-api/client"
	"logitrack-api/config"
	"logitrack-api/drafts"
	"logitrack-api/events"
	"logitrack-api/inquiries"
	"logitrack-api/listing"
	"logitrack-api/models"
	"logitrack-api/routes"
	"logitrack-api/shipments"
	"logitrack-api/socket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type cli struct {
	api     string
	session string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	log := zap.NewNop()
	db, err := config.InitDB(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Name: "Agent Smith", Email: "agent@x.io", PasswordHash: string(hash), Role: models.RoleAgent}).Error)

	store, err := drafts.Open("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	hub := socket.NewHub(log)

	srv := httptest.NewServer(routes.NewRouter(routes.Deps{
		DB:        db,
		Log:       log,
		Shipments: shipments.NewService(db, events.Multi{hub}, log),
		Drafts:    store,
		Hub:       hub,
		Inquiries: &inquiries.Service{DB: db, Notifier: events.LogNotifier{Log: log}, Log: log},
	}))
	t.Cleanup(srv.Close)
	return &cli{api: srv.URL, session: filepath.Join(t.TempDir(), "session.yaml")}
}

func (c *cli) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", c.api, "--session", c.session}, args...))
	err := cmd.Execute()
	return out.String(), err
}

var bookArgs = []string{
	"book", "--service", "road",
	"--pickup-name", "Ann", "--pickup-address", "1 Main St", "--pickup-city", "Chicago",
	"--pickup-zip", "60601", "--pickup-country", "US", "--pickup-phone", "5550100",
	"--delivery-name", "Bob", "--delivery-address", "9 Elm St", "--delivery-city", "Houston",
	"--delivery-zip", "77001", "--delivery-country", "US", "--delivery-phone", "5550199",
	"--date", "2026-03-03", "--window", "morning", "--payment", "cash_on_delivery",
}

func TestCLI_RegisterBookTrack(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("register", "--name", "Cara", "--email", "cara@x.io", "--password", "secret1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Welcome, Cara")

	out, err = c.run("-o", "yaml", "whoami")
	require.NoError(t, err)
	var me models.UserInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &me))
	assert.Equal(t, "cara@x.io", me.Email)

	out, err = c.run(bookArgs...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "$44.94")
	assert.Contains(t, out, "Your tracking number is 1")

	out, err = c.run("track", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Order Placed")
	assert.Contains(t, out, "Pending")

	_, err = c.run("track", "77")
	assert.EqualError(t, err, shipments.TrackingNotFoundMessage)

	out, err = c.run("shipments", "receipt", "1")
	require.NoError(t, err)
	for _, want := range []string{"Booking Receipt", "LR No:", "Chicago", "Houston", "Road Freight", "Branch To Phone:"} {
		assert.Contains(t, out, want)
	}
	_, err = c.run("shipments", "receipt", "77")
	assert.ErrorIs(t, err, client.ErrNoSuchShipment)

	out, err = c.run("-o", "json", "shipments", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 1`)

	_, err = c.run("update-status", "1", "delivered")
	assert.ErrorIs(t, err, client.ErrForbidden)

	out, err = c.run("logout")
	require.NoError(t, err)
	_, err = c.run("whoami")
	assert.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestCLI_BookReportsIncompleteStep(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("book", "--service", "air", "--pickup-name", "Ann")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addresses step")
	assert.Contains(t, out, "Pickup address must include city.")

	_, err = c.run("book", "--service", "rail")
	assert.Error(t, err)
}

func TestCLI_AgentDashboard(t *testing.T) {
	c := newCLI(t)
	for range 3 {
		out, err := c.run(bookArgs...)
		require.NoError(t, err, out)
	}

	_, err := c.run("login", "--email", "agent@x.io", "--password", "secret1")
	require.NoError(t, err)

	out, err := c.run("update-status", "2", "in-transit", "--location", "Memphis")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pending → In Transit")
	assert.Contains(t, out, "Page 1 of 1, 3 shipments", "dashboard page is reloaded after the update")

	_, err = c.run("update-status", "2", "delivered")
	require.Error(t, err)
	assert.Equal(t, client.UpdateFailedMessage, err.Error())

	out, err = c.run("-o", "yaml", "shipments", "--status", "in-transit")
	require.NoError(t, err)
	var rows []models.ShipmentView
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].ID)

	out, err = c.run("-o", "yaml", "shipments", "--sort", "id", "--desc", "--page-size", "2", "--page", "9")
	require.NoError(t, err)
	rows = nil
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1, "page is clamped to the last one")
	assert.Equal(t, "1", rows[0].ID)

	today := time.Now().UTC().Format(time.DateOnly)
	out, err = c.run("-o", "yaml", "shipments", "--summary", "--from", today, "--to", today)
	require.NoError(t, err)
	var sum listing.Summary
	require.NoError(t, yaml.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Count(models.StatusPending))

	out, err = c.run("export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "LR No,Booking Date")

	_, err = c.run("shipments", "--sort", "colour")
	assert.Error(t, err)
}

func TestCLI_RatesOffline(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("rates", "--offline", "--from", "New York", "--to", "Toronto",
		"--weight", "5", "--length", "20", "--width", "20", "--height", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Road Freight")
	assert.Contains(t, out, "$206.49")
}
