// Package transport supplies Loopback, an in-process stand-in for the
// RPC channel spec §1 treats as an external collaborator. It exists so
// cmd/magma and the integration tests can drive a full client/server
// round trip without depending on a real network stack — the same role
// the teacher's integration/presets.go plays for its fakenet.
package transport

import "github.com/rony4d/magma/replication"

// Handler answers a RequestDTO with a ResponseDTO, exactly the contract
// any real transport (HTTP, gRPC, a message queue) must also satisfy.
type Handler func(replication.RequestDTO) (replication.ResponseDTO, error)

// Loopback wraps a Handler as a same-process client: Call simply invokes
// the handler directly. It is not meant to model network failure modes;
// it exists purely to exercise the protocol end to end.
type Loopback struct {
	Serve Handler
}

// NewLoopback returns a Loopback backed by handler.
func NewLoopback(handler Handler) *Loopback {
	return &Loopback{Serve: handler}
}

// Call sends req to the wrapped handler and returns its response.
func (l *Loopback) Call(req replication.RequestDTO) (replication.ResponseDTO, error) {
	return l.Serve(req)
}
