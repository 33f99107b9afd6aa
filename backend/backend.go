// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backend

import (
	"context"
	"errors"
	"time"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
)

// Kind identifies which backend implementation is in use.
type Kind string

const (
	// KindSimulated identifies the in-process simulated ledger.
	KindSimulated Kind = "simulated"

	// KindRemote identifies a remote ledger server reached over
	// JSON-RPC.
	KindRemote Kind = "remote"
)

// defaultProbeTimeout bounds the connectivity probe issued by Connect.
const defaultProbeTimeout = 5 * time.Second

// Backend is the interface both ledger backends implement.  Amounts
// are expressed with the credit package fixed-point type and a nil
// amount means the full available balance.
type Backend interface {
	// Kind returns which implementation the backend is.
	Kind() Kind

	// SubmitProject submits a restoration project for verification and
	// returns the id of the resulting transaction log entry.
	SubmitProject(ctx context.Context, project mrv.ProjectData) (string, error)

	// VerifyProject records a verifier decision for a project, minting
	// approved credits.
	VerifyProject(ctx context.Context, projectID, verifierNode string, approval mrv.Approval) error

	// MintCredits mints a new credit batch for a project and returns
	// the new batch id.
	MintCredits(ctx context.Context, projectID string, amount credit.Amount, metadata credit.Metadata) (string, error)

	// TransferCredits moves credits between owners within a batch and
	// returns the amount moved.
	TransferCredits(ctx context.Context, batchID, from, to string, amount *credit.Amount) (credit.Amount, error)

	// RetireCredits permanently retires credits held by an owner and
	// returns the amount retired.
	RetireCredits(ctx context.Context, batchID, owner string, amount *credit.Amount, reason string) (credit.Amount, error)

	// Balance returns the balance an address holds in a batch.
	Balance(ctx context.Context, batchID, address string) (credit.Amount, error)

	// Stats returns the aggregate supply statistics of the ledger.
	Stats(ctx context.Context) (ledger.Stats, error)

	// RecordFieldData submits field-collected evidence for a project
	// and returns the id of the resulting transaction log entry.
	RecordFieldData(ctx context.Context, record mrv.FieldRecord) (string, error)
}

// Config describes how to construct a backend.
type Config struct {
	// Ledger and Registry back the simulated implementation and the
	// fallback path.
	Ledger   *ledger.Ledger
	Registry *mrv.Registry

	// RemoteHost is the host:port of a remote ledger server.  An empty
	// host skips the probe and selects the simulation directly.
	RemoteHost string
	RemoteUser string
	RemotePass string

	// DisableTLS connects to the remote server over plain HTTP.
	DisableTLS bool

	// Certificates holds the PEM-encoded certificate chain of the
	// remote server when TLS is in use.
	Certificates []byte

	// ProbeTimeout bounds the connectivity probe.  Zero selects a
	// reasonable default.
	ProbeTimeout time.Duration
}

// Connect returns a ready backend per the config.  When a remote host
// is configured it is probed with a ping and selected on success;
// otherwise the simulated backend takes over.
func Connect(ctx context.Context, cfg *Config) (Backend, error) {
	if cfg.Ledger == nil || cfg.Registry == nil {
		return nil, errors.New("backend requires a ledger and registry")
	}

	if cfg.RemoteHost != "" {
		remote, err := newRemote(cfg)
		if err != nil {
			return nil, err
		}

		timeout := cfg.ProbeTimeout
		if timeout == 0 {
			timeout = defaultProbeTimeout
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err = remote.client.Ping(probeCtx)
		cancel()
		if err == nil {
			log.Infof("Connected to remote ledger at %s", cfg.RemoteHost)
			return remote, nil
		}
		log.Warnf("Remote ledger at %s unreachable (%v), falling "+
			"back to simulation", cfg.RemoteHost, err)
	}

	log.Infof("Using simulated in-process ledger")
	return &Simulated{ledger: cfg.Ledger, registry: cfg.Registry}, nil
}
