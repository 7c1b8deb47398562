package kafka

import (
	"context"
	"net"
	"time"
)

// The Dialer type mirrors the net.Dialer API but is designed to open the
// connections brokers are reached through instead of raw network connections.
type Dialer struct {
	// Unique identifier for client connections established by this Dialer,
	// communicated to the brokers in every request header.
	ClientID string

	// Timeout is the maximum amount of time a dial will wait for a connect
	// to complete.
	Timeout time.Duration

	// LocalAddr is the local address to use when dialing an address.
	LocalAddr net.Addr

	// KeepAlive specifies the keep-alive period for an active network
	// connection. If zero, keep-alives are not enabled.
	KeepAlive time.Duration

	// Resolver optionally specifies an alternate resolver to use.
	Resolver *net.Resolver
}

// DefaultDialer is the default dialer used when none is specified.
var DefaultDialer = &Dialer{
	Timeout: 10 * time.Second,
}

// Dial connects to the address on the named network.
func (d *Dialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}

// DialContext connects to the address on the named network using the
// provided context.
//
// The provided Context must be non-nil. If the context expires before the
// connection is complete, an error is returned. Once successfully connected,
// any expiration of the context will not affect the connection.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if d.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	dialer := net.Dialer{
		LocalAddr: d.LocalAddr,
		KeepAlive: d.KeepAlive,
		Resolver:  d.Resolver,
	}

	return dialer.DialContext(ctx, network, address)
}
