package server

import (
	cfg "github.com/go-kyugo/productapi/config"
	"github.com/go-kyugo/productapi/logger"
)

// Component is a base helper intended to be embedded in controller-like
// types. It provides accessors to common server resources.
type Component struct {
	server *Server
}

// Init binds the component to s. It does NOT register routes.
func (c *Component) Init(s *Server) {
	if c == nil {
		return
	}
	c.server = s
}

// LookupService returns the service and a boolean indicating presence.
func (c *Component) LookupService(name string) (interface{}, bool) {
	if c == nil || c.server == nil {
		return nil, false
	}
	v := c.server.Service(name)
	return v, v != nil
}

// Logger returns the server logger, or a no-op logger when unbound.
func (c *Component) Logger() *logger.Logger {
	if c == nil || c.server == nil {
		return logger.NewNop()
	}
	return c.server.logger
}

func (c *Component) Config() *cfg.Config {
	if c == nil || c.server == nil {
		return nil
	}
	return c.server.config
}
