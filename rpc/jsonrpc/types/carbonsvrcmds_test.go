// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/decred/dcrd/dcrjson/v4"
)

// TestCmdRoundTrip ensures representative commands marshal to the
// expected wire form and parse back into the same command, including
// the application of defaults for omitted optional fields.
func TestCmdRoundTrip(t *testing.T) {
	amount := 2.5
	tests := []struct {
		name         string
		cmd          interface{}
		method       Method
		marshalled   string
		unmarshalled interface{}
	}{{
		name:       "transfercredits with amount",
		cmd:        NewTransferCreditsCmd("CC-PROJ-1-1", "alice", "bob", &amount),
		method:     "transfercredits",
		marshalled: `{"jsonrpc":"1.0","method":"transfercredits","params":["CC-PROJ-1-1","alice","bob",2.5],"id":1}`,
		unmarshalled: &TransferCreditsCmd{
			BatchID: "CC-PROJ-1-1",
			From:    "alice",
			To:      "bob",
			Amount:  &amount,
		},
	}, {
		name:       "retirecredits applies default reason",
		cmd:        NewRetireCreditsCmd("CC-PROJ-1-1", "alice", nil, nil),
		method:     "retirecredits",
		marshalled: `{"jsonrpc":"1.0","method":"retirecredits","params":["CC-PROJ-1-1","alice"],"id":1}`,
		unmarshalled: &RetireCreditsCmd{
			BatchID: "CC-PROJ-1-1",
			Owner:   "alice",
			Reason:  dcrjson.String("Carbon offsetting"),
		},
	}, {
		name:       "getbatchesbyvintage",
		cmd:        NewGetBatchesByVintageCmd(2025),
		method:     "getbatchesbyvintage",
		marshalled: `{"jsonrpc":"1.0","method":"getbatchesbyvintage","params":[2025],"id":1}`,
		unmarshalled: &GetBatchesByVintageCmd{
			Year: 2025,
		},
	}, {
		name:         "getstats",
		cmd:          NewGetStatsCmd(),
		method:       "getstats",
		marshalled:   `{"jsonrpc":"1.0","method":"getstats","params":[],"id":1}`,
		unmarshalled: &GetStatsCmd{},
	}}

	for _, test := range tests {
		marshalled, err := dcrjson.MarshalCmd("1.0", 1, test.cmd)
		if err != nil {
			t.Errorf("%q: marshal error: %v", test.name, err)
			continue
		}
		if string(marshalled) != test.marshalled {
			t.Errorf("%q: unexpected marshalled form -- got %s, want %s",
				test.name, marshalled, test.marshalled)
			continue
		}

		var request dcrjson.Request
		if err := json.Unmarshal(marshalled, &request); err != nil {
			t.Errorf("%q: request unmarshal error: %v", test.name, err)
			continue
		}
		parsed, err := dcrjson.ParseParams(test.method, request.Params)
		if err != nil {
			t.Errorf("%q: parse error: %v", test.name, err)
			continue
		}
		if !reflect.DeepEqual(parsed, test.unmarshalled) {
			t.Errorf("%q: unexpected parsed command -- got %+v, want %+v",
				test.name, parsed, test.unmarshalled)
		}
	}
}
