package ds

import (
	"fmt"
	"net"
	"strconv"
)

// Endpoint is the network address a committee member can be reached at. It is
// carried along for routing purposes and never consulted for ordering.
type Endpoint struct {
	IP   net.IP
	Port uint32
}

// NewEndpoint creates an endpoint from an IP and a port.
func NewEndpoint(ip net.IP, port uint32) Endpoint {
	return Endpoint{IP: ip, Port: port}
}

// ParseEndpoint parses a "host:port" string where host is an IP literal.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint (%s): %w", s, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint ip (%s)", host)
	}
	port, err := strconv.ParseUint(portStr, 10, 32)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint port (%s): %w", portStr, err)
	}
	return Endpoint{IP: ip, Port: uint32(port)}, nil
}

// String returns the "ip:port" representation of the endpoint.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), strconv.FormatUint(uint64(e.Port), 10))
}

// Equal compares two endpoints. IPv4 addresses compare equal to their
// IPv4-in-IPv6 form.
func (e Endpoint) Equal(other Endpoint) bool {
	return e.Port == other.Port && e.IP.Equal(other.IP)
}

func (e Endpoint) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Endpoint) UnmarshalText(text []byte) error {
	var err error
	*e, err = ParseEndpoint(string(text))
	return err
}
