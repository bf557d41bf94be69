package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"logitrack-api/events"
	"logitrack-api/models"

	"github.com/gorilla/websocket"
)

var ErrTrackingRequired = errors.New("Tracking number is required.")

// NotFoundError carries the server's not-found message
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Track looks a shipment up by LR number
func (c *Client) Track(ctx context.Context, lrNo string) (models.TrackingResult, error) {
	lrNo = strings.TrimSpace(lrNo)
	if lrNo == "" {
		return models.TrackingResult{}, ErrTrackingRequired
	}
	var res models.TrackingResult
	if err := c.do(ctx, http.MethodPost, "/api/track_shipment/", nil, map[string]string{"lr_no": lrNo}, &res); err != nil {
		return models.TrackingResult{}, err
	}
	if !res.Success {
		return models.TrackingResult{}, &NotFoundError{Message: res.Message}
	}
	return res, nil
}

// Tracker keeps the last successful lookup; any failure clears it
type Tracker struct {
	client *Client

	mu     sync.Mutex
	result *models.TrackingResult
}

func NewTracker(c *Client) *Tracker {
	return &Tracker{client: c}
}

func (t *Tracker) Track(ctx context.Context, lrNo string) (models.TrackingResult, error) {
	res, err := t.client.Track(ctx, lrNo)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.result = nil
		return models.TrackingResult{}, err
	}
	t.result = &res
	return res, nil
}

// Result returns the shown tracking result, if any
func (t *Tracker) Result() (models.TrackingResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result == nil {
		return models.TrackingResult{}, false
	}
	return *t.result, true
}

// Follow opens the live tracking stream for lrNo. onSnapshot receives the
// current tracking view once, then onEvent every status change until ctx is
// done or the server closes the stream.
func (c *Client) Follow(ctx context.Context, lrNo string, onSnapshot func(models.TrackingResult), onEvent func(events.ShipmentEvent)) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws/track/" + url.PathEscape(strings.TrimSpace(lrNo))

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return decodeError(resp)
		}
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var snapshot models.TrackingResult
	if err := conn.ReadJSON(&snapshot); err != nil {
		return err
	}
	if onSnapshot != nil {
		onSnapshot(snapshot)
	}
	for {
		var ev events.ShipmentEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if onEvent != nil {
			onEvent(ev)
		}
	}
}
