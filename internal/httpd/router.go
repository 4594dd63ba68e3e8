// Package httpd is the panel's minimal HTTP surface: a substring router,
// the fixed control page, the accept/receive callbacks and a cooperative
// network service that dispatches them on the control goroutine.
package httpd

import "bytes"

// Route is the outcome of routing one request.
type Route int

const (
	RouteNone Route = iota
	RouteArm
	RouteDisarm
)

func (r Route) String() string {
	switch r {
	case RouteArm:
		return "alarm_on"
	case RouteDisarm:
		return "alarm_off"
	}
	return "none"
}

var (
	armLiteral    = []byte("GET /alarm_on")
	disarmLiteral = []byte("GET /alarm_off")
)

// Match scans req for the two request literals. The search is a plain
// substring search anywhere in the buffer, not anchored to the request
// line; when both occur the earliest one wins.
func Match(req []byte) Route {
	on := bytes.Index(req, armLiteral)
	off := bytes.Index(req, disarmLiteral)
	switch {
	case on < 0 && off < 0:
		return RouteNone
	case off < 0:
		return RouteArm
	case on < 0:
		return RouteDisarm
	case on < off:
		return RouteArm
	default:
		return RouteDisarm
	}
}

// Transitions is the alarm state machine as seen by the router.
type Transitions interface {
	Arm() error
	Disarm() error
}

// Router invokes exactly one transition per recognised request.
type Router struct {
	t Transitions
}

// NewRouter creates a Router driving t.
func NewRouter(t Transitions) *Router {
	return &Router{t: t}
}

// Dispatch routes req and runs the matching transition. Unrecognised
// requests are not an error.
func (r *Router) Dispatch(req []byte) (Route, error) {
	route := Match(req)
	switch route {
	case RouteArm:
		return route, r.t.Arm()
	case RouteDisarm:
		return route, r.t.Disarm()
	}
	return route, nil
}
