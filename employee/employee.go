// Package employee covers the employee's own account surface: profile,
// notifications, and push device registration.
package employee

import (
	"context"
	"fmt"
	"strings"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Session supplies the logged-in employee
type Session interface {
	EmployeeID() (int, bool)
}

// Profile is the employee's account record
type Profile struct {
	ID         int    `json:"id"`
	EmployeeID int    `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Image      string `json:"image"`
	Language   string `json:"language"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are
// omitted so the server keeps their current values.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Language string `json:"language,omitempty"`
}

// Notification is one entry in the employee's notification feed
type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// Client performs profile and notification operations
type Client struct {
	transport *core.Transport
	cache     *core.QueryCache
	session   Session
	logger    logger.Logger
}

// NewClient creates an employee client
func NewClient(transport *core.Transport, cache *core.QueryCache, session Session, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		transport: transport,
		cache:     cache,
		session:   session,
		logger:    log.With(map[string]interface{}{"component": "employee"}),
	}
}

type profileResponse struct {
	Profile *Profile `json:"profile"`
}

// Profile fetches the employee's account record
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathProfile, employeeID)
	if cached, hit := c.cache.Get(key); hit {
		cp := *cached.(*Profile)
		return &cp, nil
	}

	gen := c.cache.Begin(key)
	var resp profileResponse
	if err := c.transport.GetJSON(ctx, core.PathProfile, &resp); err != nil {
		return nil, core.NewClientError("employee.Profile", "profile", err)
	}
	if resp.Profile == nil {
		return nil, core.NewClientError("employee.Profile", "profile",
			fmt.Errorf("empty profile payload: %w", core.ErrRequestFailed))
	}

	if !c.cache.Commit(key, gen, resp.Profile, core.TagProfile) {
		return nil, core.ErrSuperseded
	}
	cp := *resp.Profile
	return &cp, nil
}

// UpdateProfile saves the editable profile fields and invalidates the
// cached profile so the next read reflects the change
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if _, ok := c.session.EmployeeID(); !ok {
		return core.ErrUnauthenticated
	}
	if update == (ProfileUpdate{}) {
		return fmt.Errorf("employee.UpdateProfile: %w: no fields to update", core.ErrInvalidConfiguration)
	}

	if err := c.transport.PostJSON(ctx, core.PathProfileSave, update, nil); err != nil {
		return core.NewClientError("employee.UpdateProfile", "profile", err)
	}

	c.cache.Invalidate(core.TagProfile, core.TagHome)
	return nil
}

type notificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// Notifications returns the employee's notification feed
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathNotifs, employeeID)
	if cached, hit := c.cache.Get(key); hit {
		return append([]Notification(nil), cached.([]Notification)...), nil
	}

	gen := c.cache.Begin(key)
	var resp notificationsResponse
	if err := c.transport.GetJSON(ctx, core.PathNotifs, &resp); err != nil {
		return nil, core.NewClientError("employee.Notifications", "notifications", err)
	}

	if !c.cache.Commit(key, gen, resp.Notifications, core.TagNotifications) {
		return nil, core.ErrSuperseded
	}
	return append([]Notification(nil), resp.Notifications...), nil
}

type markReadRequest struct {
	NotificationID int `json:"notification_id"`
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int) error {
	if _, ok := c.session.EmployeeID(); !ok {
		return core.ErrUnauthenticated
	}

	if err := c.transport.PostJSON(ctx, core.PathNotifRead, markReadRequest{
		NotificationID: notificationID,
	}, nil); err != nil {
		return core.NewClientError("employee.MarkNotificationRead", "notifications", err)
	}

	c.cache.Invalidate(core.TagNotifications)
	return nil
}

type deviceTokenRequest struct {
	EmployeeID  int    `json:"employee_id"`
	DeviceToken string `json:"device_token"`
	Platform    string `json:"platform,omitempty"`
}

// RegisterDeviceToken registers a push token for this device. Registration
// failures are non-fatal to login flows; callers typically log and move on.
func (c *Client) RegisterDeviceToken(ctx context.Context, token, platform string) error {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return core.ErrUnauthenticated
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("employee.RegisterDeviceToken: %w: empty device token", core.ErrInvalidConfiguration)
	}

	if err := c.transport.PostJSON(ctx, core.PathDeviceToken, deviceTokenRequest{
		EmployeeID:  employeeID,
		DeviceToken: token,
		Platform:    platform,
	}, nil); err != nil {
		return core.NewClientError("employee.RegisterDeviceToken", "notifications", err)
	}

	c.logger.Debug("Device token registered", map[string]interface{}{"platform": platform})
	return nil
}
