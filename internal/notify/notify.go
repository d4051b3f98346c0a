// Package notify delivers alerts as freedesktop desktop notifications over the
// D-Bus session bus.
package notify

import (
	"context"
	"time"

	"codeberg.org/mutker/battwarn/internal/errors"
	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall = busName + ".Notify"
)

const (
	ErrConnectFailed = errors.ErrorCode("notify_connect_failed")
	ErrSendFailed    = errors.ErrorCode("notify_send_failed")
)

// Sink displays a titled alert.
type Sink interface {
	Notify(ctx context.Context, title, body string) error
}

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// ParseUrgency maps a configured urgency name to an Urgency.
func ParseUrgency(name string) (Urgency, bool) {
	switch name {
	case "low":
		return UrgencyLow, true
	case "normal":
		return UrgencyNormal, true
	case "critical":
		return UrgencyCritical, true
	default:
		return UrgencyCritical, false
	}
}

// Template holds the presentation shared by every alert. Only the title and
// body vary per call.
type Template struct {
	AppName   string
	Icon      string
	Sound     string
	Urgency   Urgency
	Timeout   time.Duration // 0 keeps the notification until dismissed
	Transient bool
}

// DefaultTemplate returns the template used when nothing is configured.
func DefaultTemplate() Template {
	return Template{
		AppName:   "battwarn",
		Icon:      "battery-caution",
		Sound:     "battery-low",
		Urgency:   UrgencyCritical,
		Transient: true,
	}
}

func (t Template) hints() map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(t.Urgency)),
	}
	if t.Sound != "" {
		hints["sound-name"] = dbus.MakeVariant(t.Sound)
	}
	if t.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}

	return hints
}

// expireTimeout converts Timeout to the milliseconds value of the Notify call.
func (t Template) expireTimeout() int32 {
	if t.Timeout <= 0 {
		return 0
	}

	return int32(t.Timeout / time.Millisecond)
}

// args builds the Notify arguments for one alert.
func (t Template) args(title, body string) []interface{} {
	return []interface{}{
		t.AppName,
		uint32(0),
		t.Icon,
		title,
		body,
		[]string{},
		t.hints(),
		t.expireTimeout(),
	}
}

type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier sends notifications on a private session bus connection.
type Notifier struct {
	conn     *dbus.Conn
	obj      caller
	template Template
}

// New connects to the session bus.
func New(template Template) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, errors.New().Wrap(ErrConnectFailed, err)
	}

	return &Notifier{
		conn:     conn,
		obj:      conn.Object(busName, objectPath),
		template: template,
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, title, body string) error {
	call := n.obj.CallWithContext(ctx, notifyCall, 0, n.template.args(title, body)...)
	if call.Err != nil {
		return errors.New().Wrap(ErrSendFailed, call.Err)
	}

	return nil
}

func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}

	return n.conn.Close()
}
