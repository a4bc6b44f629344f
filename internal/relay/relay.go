// Package relay mirrors headquarters discoveries to a socket.io server.
package relay

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"

	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/headquarters"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ErrNotConnected is returned by Publish after the connection was lost or closed.
var ErrNotConnected = errors.New("relay: socket is not connected")

// SocketIO publishes discoveries as socket.io events on one namespace.
type SocketIO struct {
	io    *socket.Socket
	event string
}

var _ headquarters.Relay = (*SocketIO)(nil)

// Dial connects to cfg.URL and waits for the namespace connect event.
func Dial(ctx context.Context, cfg *config.Relay) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)

	opts, baseURL, err := newOptions(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
	}

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Relay connected.", "sid", io.Id())
		report(connectChan, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		report(connectChan, connectError(errs))
	})

	logger.Debug("Connecting relay...")
	io.Connect()

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io, event: cfg.Event}, nil
	case <-waitCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out waiting for socket.io connection: %w", waitCtx.Err())
	}
}

// report delivers the first connection outcome and drops later ones.
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// connectError turns the arguments of a connect_error event into an error.
func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connect_error without details")
	}
	if err, ok := args[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("%v", args[0])
}

func newOptions(cfg *config.Relay) (*socket.Options, string, error) {
	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, "", fmt.Errorf("relay url %q must be absolute", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)
	opts.SetTimeout(cfg.Timeout)

	return opts, fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host), nil
}

// Publish emits d as {parent, id, frequency}.
func (s *SocketIO) Publish(_ context.Context, d headquarters.Discovery) error {
	if !s.io.Connected() {
		return ErrNotConnected
	}
	return s.io.Emit(s.event, map[string]any{
		"parent":    d.Parent,
		"id":        d.ID,
		"frequency": d.Frequency,
	})
}

// Event returns the event name discoveries are emitted under.
func (s *SocketIO) Event() string {
	return s.event
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}
