// Package client implements the data flow described in spec §2: build a
// Request, encode it, call the transport, decode the UnvalidatedResponse,
// and validate it against the original Request to obtain a ValidResponse.
package client

import (
	"fmt"

	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/replication"
	"github.com/rony4d/magma/semigroup"
	"github.com/rony4d/magma/transport"
	"github.com/sirupsen/logrus"
)

// Fetch drives one full request/response/validate round trip over lb and
// returns a ValidResponse, or an error from encoding, transport, decode,
// or validation.
func Fetch[S semigroup.CanonicalEncoding](lb *transport.Loopback, fam digest.Family, sg semigroup.Semigroup[S], req replication.Request, log *logrus.Entry) (*replication.ValidResponse[S], error) {
	reqDTO := replication.FromRequest(req)

	respDTO, err := lb.Call(*reqDTO)
	if err != nil {
		return nil, fmt.Errorf("client: transport call failed: %w", err)
	}

	unvalidated, err := replication.ToUnvalidatedResponse[S](&respDTO, fam, sg)
	if err != nil {
		return nil, fmt.Errorf("client: decoding response failed: %w", err)
	}

	valid, err := replication.Validate[S](unvalidated, req, fam, log)
	if err != nil {
		return nil, fmt.Errorf("client: response validation failed: %w", err)
	}
	return valid, nil
}
