// Package guard decides whether a route may render for the current session.
package guard

import (
	"EstateHub/session"
	"net/url"
	"strings"
)

type Action int

const (
	Allow Action = iota
	// Wait renders nothing until the session is resolved.
	Wait
	Redirect
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

type Decision struct {
	Action Action
	// Location is set for redirects, including the return path for login.
	Location string
}

// Rule matches an exact path or, with a trailing "/*", a path prefix.
// Public rules skip every check. An empty Roles set only needs a session.
type Rule struct {
	Pattern string
	Public  bool
	Roles   []string
}

func (r Rule) matches(path string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

type Guard struct {
	rules      []Rule
	loginPath  string
	homePath   string
	protectAll bool
}

// New builds a guard over rules, checked in order. Paths matching no rule
// are allowed unless protectAll is set.
func New(rules []Rule, protectAll bool) *Guard {
	return &Guard{rules: rules, loginPath: "/login", homePath: "/", protectAll: protectAll}
}

// DefaultRules is the site's route table.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/login", Public: true},
		{Pattern: "/register", Public: true},
		{Pattern: "/forgot-password", Public: true},
		{Pattern: "/admin/*", Roles: []string{"admin", "owner"}},
		{Pattern: "/wishlist"},
		{Pattern: "/visits"},
		{Pattern: "/profile"},
		{Pattern: "/payments/*"},
	}
}

func (g *Guard) rule(path string) (Rule, bool) {
	for _, r := range g.rules {
		if r.matches(path) {
			return r, true
		}
	}
	return Rule{}, false
}

func (g *Guard) Check(path string, st session.State) Decision {
	r, found := g.rule(path)
	if !found && !g.protectAll {
		return Decision{Action: Allow}
	}
	if r.Public {
		return Decision{Action: Allow}
	}
	if st.Pending {
		return Decision{Action: Wait}
	}
	if !st.Authenticated() {
		if st.RecentSession {
			return Decision{Action: Wait}
		}
		return Decision{Action: Redirect, Location: g.loginPath + "?from=" + url.QueryEscape(path)}
	}
	if len(r.Roles) > 0 && !hasRole(r.Roles, st.Role()) {
		return Decision{Action: Redirect, Location: g.homePath}
	}
	return Decision{Action: Allow}
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// ReturnPath extracts the post-login destination from a login location.
func ReturnPath(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return "/"
	}
	from := u.Query().Get("from")
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return "/"
	}
	return from
}
