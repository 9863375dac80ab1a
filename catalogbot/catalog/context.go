package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Server identifies an independent catalog snapshot.
type Server string

const (
	ServerJP Server = "jp"
	ServerEN Server = "en"
	ServerTW Server = "tw"
	ServerKR Server = "kr"
	ServerCN Server = "cn"
)

var KnownServers = []Server{ServerJP, ServerEN, ServerTW, ServerKR, ServerCN}

// ParseServer accepts a server code in any case.
func ParseServer(s string) (Server, error) {
	server := Server(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(KnownServers, server) {
		return "", fmt.Errorf("unknown server %q", s)
	}
	return server, nil
}

// Context carries the per-query preferences every accessor and formatter may read.
type Context struct {
	Server Server
	// Servers is the ordered list of loaded servers, used for cross-server cycling.
	Servers         []Server
	Now             time.Time
	Location        *time.Location
	AllowUnreleased bool
	Language        string
}

// WithServer returns a copy of c targeting server.
func (c *Context) WithServer(server Server) *Context {
	clone := *c
	clone.Server = server
	return &clone
}

// Local converts t into the context's timezone.
func (c *Context) Local(t time.Time) time.Time {
	if c.Location == nil {
		return t.UTC()
	}
	return t.In(c.Location)
}

// FormatDate renders t as a fixed-width yyyy/mm/dd date in the context's timezone.
func (c *Context) FormatDate(t time.Time) string {
	if t.IsZero() {
		return "????/??/??"
	}
	return c.Local(t).Format("2006/01/02")
}

// Date truncates t to midnight of its day in the context's timezone.
func (c *Context) Date(t time.Time) time.Time {
	local := c.Local(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
