// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"context"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/certgen"
	"github.com/decred/dcrd/dcrjson/v4"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
)

const (
	// rpcAuthTimeoutSeconds is the number of seconds a connection to the
	// RPC server is allowed to stay open without authenticating before
	// it is closed.
	rpcAuthTimeoutSeconds = 10

	// jsonRPCSemverString is the RPC server's semantic API version.
	jsonRPCSemverString = "1.0.0"
)

// Config is a descriptor containing the RPC server configuration.
type Config struct {
	// Listeners defines the addresses the server listens on.
	Listeners []string

	// User and Pass are the credentials required by HTTP basic
	// authentication.  Empty credentials disable authentication, which
	// is only sensible behind TLS client certificates or on loopback.
	User string
	Pass string

	// DisableTLS serves all endpoints over plain HTTP when set.
	DisableTLS bool

	// CertFile and KeyFile identify the TLS keypair.  A missing pair is
	// generated on first use with AltDNSNames as additional hosts.
	CertFile    string
	KeyFile     string
	AltDNSNames []string

	// MaxClients limits concurrent standard RPC clients.
	MaxClients int

	// MaxWebsocketClients limits concurrent websocket clients.
	MaxWebsocketClients int

	// Ledger and Registry provide the ledger state the server exposes.
	Ledger   *ledger.Ledger
	Registry *mrv.Registry
}

// Server provides a concurrent safe RPC server to a carbon credit
// ledger.
type Server struct {
	numClients atomic.Int32

	cfg     Config
	authsha [sha256.Size]byte
	ntfnMgr *wsNotificationManager
	wg      sync.WaitGroup
}

// New returns a new instance of the Server struct.
func New(cfg *Config) (*Server, error) {
	if cfg.Ledger == nil || cfg.Registry == nil {
		return nil, errors.New("rpcserver requires a ledger and registry")
	}

	s := Server{cfg: *cfg}
	if cfg.User != "" && cfg.Pass != "" {
		login := cfg.User + ":" + cfg.Pass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		s.authsha = sha256.Sum256([]byte(auth))
	}
	s.ntfnMgr = newWsNotificationManager(&s)
	return &s, nil
}

// checkAuth checks the HTTP Basic authentication supplied by a client
// in the HTTP request r.  The comparison is time-constant.
func (s *Server) checkAuth(r *http.Request) (bool, error) {
	// Auth is disabled when no credentials are configured.
	if s.authsha == ([sha256.Size]byte{}) {
		return true, nil
	}

	authhdr := r.Header["Authorization"]
	if len(authhdr) == 0 {
		log.Warnf("RPC authentication failure from %s", r.RemoteAddr)
		return false, errors.New("auth failure")
	}

	authsha := sha256.Sum256([]byte(authhdr[0]))
	cmp := subtle.ConstantTimeCompare(authsha[:], s.authsha[:])
	if cmp != 1 {
		log.Warnf("RPC authentication failure from %s", r.RemoteAddr)
		return false, errors.New("auth failure")
	}
	return true, nil
}

// limitConnections responds with a 503 service unavailable and returns
// true if adding another client would exceed the maximum allowed RPC
// clients.
func (s *Server) limitConnections(w http.ResponseWriter, remoteAddr string) bool {
	if int(s.numClients.Load())+1 > s.cfg.MaxClients {
		log.Infof("Max RPC clients exceeded [%d] - disconnecting "+
			"client %s", s.cfg.MaxClients, remoteAddr)
		http.Error(w, "503 Too busy.  Try again later.",
			http.StatusServiceUnavailable)
		return true
	}
	return false
}

// rpcInvalidError is a convenience function to convert an invalid
// parameter error to an RPC error with the appropriate code set.
func rpcInvalidError(fmtStr string, args ...interface{}) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCInvalidParameter,
		fmt.Sprintf(fmtStr, args...))
}

// rpcInternalError is a convenience function to convert an internal
// error to an RPC error with the appropriate code set.  It also logs
// the error to the RPC server subsystem.
func rpcInternalError(errStr, context string) *dcrjson.RPCError {
	logStr := errStr
	if context != "" {
		logStr = context + ": " + errStr
	}
	log.Error(logStr)
	return dcrjson.NewRPCError(dcrjson.ErrRPCInternal.Code, errStr)
}

// rpcRuleError converts a ledger, credit, or registry rule violation to
// an RPC error.  Validation failures on ids and amounts map to the
// invalid parameter code; everything else reports the misc code with
// the rule description.
func rpcRuleError(err error) *dcrjson.RPCError {
	switch {
	case errors.Is(err, ledger.ErrUnknownBatch),
		errors.Is(err, mrv.ErrUnknownProject),
		errors.Is(err, credit.ErrInvalidAmount):
		return dcrjson.NewRPCError(dcrjson.ErrRPCInvalidParameter, err.Error())
	}
	return dcrjson.NewRPCError(dcrjson.ErrRPCMisc, err.Error())
}

// resolveAmount converts an optional wire amount to an internal amount.
// The second return value reports whether the caller omitted the amount
// and therefore wants the full balance applied.
func resolveAmount(amount *float64) (credit.Amount, bool, error) {
	if amount == nil {
		return 0, true, nil
	}
	amt, err := credit.NewAmount(*amount)
	if err != nil {
		return 0, false, rpcInvalidError("invalid amount: %v", *amount)
	}
	return amt, false, nil
}

// commandHandler describes a callback function used to handle a
// specific command.
type commandHandler func(context.Context, *Server, interface{}) (interface{}, error)

// rpcHandlers maps RPC command strings to appropriate handler
// functions.
var rpcHandlers = map[types.Method]commandHandler{
	"batchretire":          handleBatchRetire,
	"batchtransfer":        handleBatchTransfer,
	"getbalance":           handleGetBalance,
	"getbatch":             handleGetBatch,
	"getbatchesbyproject":  handleGetBatchesByProject,
	"getbatchesbyvintage":  handleGetBatchesByVintage,
	"getlogentries":        handleGetLogEntries,
	"getportfolio":         handleGetPortfolio,
	"getprojectinfo":       handleGetProjectInfo,
	"getretirementhistory": handleGetRetirementHistory,
	"getstats":             handleGetStats,
	"mintcredits":          handleMintCredits,
	"ping":                 handlePing,
	"recordfielddata":      handleRecordFieldData,
	"retirecredits":        handleRetireCredits,
	"submitproject":        handleSubmitProject,
	"transfercredits":      handleTransferCredits,
	"verifyproject":        handleVerifyProject,
}

// handleSubmitProject implements the submitproject command.
func handleSubmitProject(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.SubmitProjectCmd)
	if c.Project.ID == "" {
		return nil, rpcInvalidError("project id must not be empty")
	}
	entryID := s.cfg.Registry.Submit(projectFromWire(c.Project))
	return entryID.String(), nil
}

// handleVerifyProject implements the verifyproject command.
func handleVerifyProject(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.VerifyProjectCmd)

	credits, err := credit.NewAmount(c.CreditsApproved)
	if err != nil {
		return nil, rpcInvalidError("invalid credit amount: %v",
			c.CreditsApproved)
	}
	approval := mrv.Approval{
		Decision:        mrv.Decision(c.Decision),
		CreditsApproved: credits,
	}
	if c.Notes != nil {
		approval.Notes = *c.Notes
	}
	if err := s.cfg.Registry.Verify(c.ProjectID, c.VerifierNode, approval); err != nil {
		return nil, rpcRuleError(err)
	}

	info, ok := s.cfg.Registry.Info(c.ProjectID)
	if !ok {
		return nil, rpcInternalError("verified project missing",
			"verifyproject")
	}
	result := types.VerifyProjectResult{
		ProjectID:     c.ProjectID,
		Status:        string(info.Status),
		CreditsIssued: info.CreditsIssued.ToTonnes(),
	}
	if len(info.BatchIDs) > 0 {
		result.BatchID = info.BatchIDs[len(info.BatchIDs)-1]
	}
	return result, nil
}

// handleMintCredits implements the mintcredits command.
func handleMintCredits(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.MintCreditsCmd)

	amount, err := credit.NewAmount(c.Amount)
	if err != nil {
		return nil, rpcInvalidError("invalid amount: %v", c.Amount)
	}
	metadata, err := metadataFromWire(c.Metadata)
	if err != nil {
		return nil, rpcInvalidError("invalid metadata: %v", err)
	}
	batchID, err := s.cfg.Ledger.Mint(c.ProjectID, amount, metadata)
	if err != nil {
		return nil, rpcRuleError(err)
	}
	return batchID, nil
}

// handleTransferCredits implements the transfercredits command.
func handleTransferCredits(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.TransferCreditsCmd)

	amount, all, err := resolveAmount(c.Amount)
	if err != nil {
		return nil, err
	}
	var moved credit.Amount
	var ruleErr error
	if all {
		moved, ruleErr = s.cfg.Ledger.TransferAll(c.BatchID, c.From, c.To)
	} else {
		moved, ruleErr = amount, s.cfg.Ledger.Transfer(c.BatchID, c.From, c.To, amount)
	}
	if ruleErr != nil {
		return nil, rpcRuleError(ruleErr)
	}
	return types.TransferCreditsResult{Moved: moved.ToTonnes()}, nil
}

// handleRetireCredits implements the retirecredits command.
func handleRetireCredits(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.RetireCreditsCmd)

	amount, all, err := resolveAmount(c.Amount)
	if err != nil {
		return nil, err
	}
	var reason string
	if c.Reason != nil {
		reason = *c.Reason
	}
	var retired credit.Amount
	var ruleErr error
	if all {
		retired, ruleErr = s.cfg.Ledger.RetireAll(c.BatchID, c.Owner, reason)
	} else {
		retired, ruleErr = amount, s.cfg.Ledger.Retire(c.BatchID, c.Owner, amount, reason)
	}
	if ruleErr != nil {
		return nil, rpcRuleError(ruleErr)
	}

	result := types.RetireCreditsResult{Retired: retired.ToTonnes()}
	if snapshot, ok := s.cfg.Ledger.BatchInfo(c.BatchID); ok {
		result.FullyRetired = snapshot.FullyRetired
	}
	return result, nil
}

// handleBatchTransfer implements the batchtransfer command.
func handleBatchTransfer(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.BatchTransferCmd)

	requests := make([]ledger.TransferRequest, 0, len(c.Transfers))
	for _, item := range c.Transfers {
		req := ledger.TransferRequest{
			BatchID: item.BatchID,
			From:    item.From,
			To:      item.To,
		}
		if item.Amount != nil {
			// Invalid amounts are passed through so the item fails
			// individually instead of rejecting the whole batch.
			amt, _ := credit.NewAmount(*item.Amount)
			req.Amount = &amt
		}
		requests = append(requests, req)
	}

	outcome := func(o ledger.TransferOutcome) types.BatchTransferOutcome {
		wire := types.BatchTransferOutcome{
			BatchID: o.Request.BatchID,
			From:    o.Request.From,
			To:      o.Request.To,
			Amount:  o.Moved.ToTonnes(),
		}
		if o.Err != nil {
			wire.Error = o.Err.Error()
		}
		return wire
	}

	result := s.cfg.Ledger.BatchTransfer(requests)
	wire := types.BatchTransferResult{
		Successful: make([]types.BatchTransferOutcome, 0, len(result.Successful)),
		Failed:     make([]types.BatchTransferOutcome, 0, len(result.Failed)),
	}
	for _, o := range result.Successful {
		wire.Successful = append(wire.Successful, outcome(o))
	}
	for _, o := range result.Failed {
		wire.Failed = append(wire.Failed, outcome(o))
	}
	return wire, nil
}

// handleBatchRetire implements the batchretire command.
func handleBatchRetire(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.BatchRetireCmd)

	requests := make([]ledger.RetireRequest, 0, len(c.Retirements))
	for _, item := range c.Retirements {
		req := ledger.RetireRequest{
			BatchID: item.BatchID,
			Owner:   item.Owner,
			Reason:  item.Reason,
		}
		if item.Amount != nil {
			amt, _ := credit.NewAmount(*item.Amount)
			req.Amount = &amt
		}
		requests = append(requests, req)
	}

	outcome := func(o ledger.RetireOutcome) types.BatchRetireOutcome {
		wire := types.BatchRetireOutcome{
			BatchID: o.Request.BatchID,
			Owner:   o.Request.Owner,
			Amount:  o.Retired.ToTonnes(),
			Reason:  o.Request.Reason,
		}
		if o.Err != nil {
			wire.Error = o.Err.Error()
		}
		return wire
	}

	result := s.cfg.Ledger.BatchRetire(requests)
	wire := types.BatchRetireResult{
		Successful: make([]types.BatchRetireOutcome, 0, len(result.Successful)),
		Failed:     make([]types.BatchRetireOutcome, 0, len(result.Failed)),
	}
	for _, o := range result.Successful {
		wire.Successful = append(wire.Successful, outcome(o))
	}
	for _, o := range result.Failed {
		wire.Failed = append(wire.Failed, outcome(o))
	}
	return wire, nil
}

// handleGetBalance implements the getbalance command.
func handleGetBalance(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetBalanceCmd)
	return s.cfg.Ledger.BalanceOf(c.BatchID, c.Address).ToTonnes(), nil
}

// handleGetBatch implements the getbatch command.
func handleGetBatch(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetBatchCmd)
	snapshot, ok := s.cfg.Ledger.BatchInfo(c.BatchID)
	if !ok {
		return nil, rpcInvalidError("batch %s does not exist", c.BatchID)
	}
	return wireBatch(snapshot), nil
}

// handleGetBatchesByVintage implements the getbatchesbyvintage command.
func handleGetBatchesByVintage(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetBatchesByVintageCmd)
	snapshots := s.cfg.Ledger.BatchesByVintage(c.Year)
	batches := make([]types.Batch, 0, len(snapshots))
	for _, snapshot := range snapshots {
		batches = append(batches, wireBatch(snapshot))
	}
	return batches, nil
}

// handleGetBatchesByProject implements the getbatchesbyproject command.
func handleGetBatchesByProject(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetBatchesByProjectCmd)
	snapshots := s.cfg.Ledger.BatchesByProject(c.ProjectID)
	batches := make([]types.Batch, 0, len(snapshots))
	for _, snapshot := range snapshots {
		batches = append(batches, wireBatch(snapshot))
	}
	return batches, nil
}

// handleGetPortfolio implements the getportfolio command.
func handleGetPortfolio(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetPortfolioCmd)
	portfolio := s.cfg.Ledger.PortfolioOf(c.Address)

	result := types.PortfolioResult{
		Address:      portfolio.Address,
		TotalBalance: portfolio.TotalBalance.ToTonnes(),
		Holdings:     make([]types.Holding, 0, len(portfolio.Holdings)),
		Entries:      make([]types.LogEntry, 0, len(portfolio.Entries)),
	}
	for _, holding := range portfolio.Holdings {
		result.Holdings = append(result.Holdings, types.Holding{
			BatchID:     holding.BatchID,
			ProjectID:   holding.ProjectID,
			Balance:     holding.Balance.ToTonnes(),
			VintageYear: holding.VintageYear,
			Standard:    holding.Standard,
		})
	}
	for _, entry := range portfolio.Entries {
		result.Entries = append(result.Entries, wireEntry(entry))
	}
	return result, nil
}

// handleGetRetirementHistory implements the getretirementhistory
// command.
func handleGetRetirementHistory(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetRetirementHistoryCmd)
	var addr string
	if c.Address != nil {
		addr = *c.Address
	}
	history := s.cfg.Ledger.RetirementHistory(addr)
	entries := make([]types.RetirementEntry, 0, len(history))
	for _, item := range history {
		entries = append(entries, types.RetirementEntry{
			BatchID:          item.BatchID,
			ProjectID:        item.ProjectID,
			RetirementRecord: wireRetirement(item.RetirementRecord),
		})
	}
	return entries, nil
}

// handleGetProjectInfo implements the getprojectinfo command.
func handleGetProjectInfo(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetProjectInfoCmd)
	info, ok := s.cfg.Registry.Info(c.ProjectID)
	if !ok {
		return nil, rpcInvalidError("project %s does not exist", c.ProjectID)
	}

	result := types.GetProjectInfoResult{
		Project: types.ProjectData{
			ID:          info.Data.ID,
			Name:        info.Data.Name,
			Ecosystem:   info.Data.Ecosystem,
			Location:    info.Data.Location,
			SubmitterID: info.Data.SubmitterID,
			TreeCount:   info.Data.TreeCount,
			Attributes:  info.Data.Attributes,
		},
		DataHash:      info.DataHash,
		Status:        string(info.Status),
		SubmittedAt:   wireTime(info.SubmittedAt),
		CreditsIssued: info.CreditsIssued.ToTonnes(),
		BatchIDs:      info.BatchIDs,
	}
	for _, verification := range info.Verifications {
		result.Verifications = append(result.Verifications,
			types.VerificationRecord{
				Node:            verification.Node,
				Time:            wireTime(verification.Time),
				Decision:        string(verification.Decision),
				CreditsApproved: verification.CreditsApproved.ToTonnes(),
				Notes:           verification.Notes,
			})
	}
	for _, record := range info.FieldData {
		result.FieldData = append(result.FieldData, wireFieldData(record))
	}
	for _, snapshot := range info.Batches {
		result.Batches = append(result.Batches, wireBatch(snapshot))
	}
	return result, nil
}

// handleGetStats implements the getstats command.
func handleGetStats(_ context.Context, s *Server, _ interface{}) (interface{}, error) {
	stats := s.cfg.Ledger.Stats()

	vintages := make(map[string]types.SupplyBreakdown, len(stats.VintageBreakdown))
	for year, breakdown := range stats.VintageBreakdown {
		vintages[fmt.Sprintf("%d", year)] = types.SupplyBreakdown{
			Total:   breakdown.Total.ToTonnes(),
			Retired: breakdown.Retired.ToTonnes(),
			Active:  breakdown.Active.ToTonnes(),
		}
	}
	total, verified, pending := s.cfg.Registry.Counts()

	return types.GetStatsResult{
		TotalSupply:             stats.TotalSupply.ToTonnes(),
		ActiveSupply:            stats.ActiveSupply.ToTonnes(),
		RetiredSupply:           stats.RetiredSupply.ToTonnes(),
		RetirementRate:          stats.RetirementRate,
		TotalBatches:            stats.TotalBatches,
		FullyRetiredBatches:     stats.FullyRetiredBatches,
		PartiallyRetiredBatches: stats.PartiallyRetiredBatches,
		ActiveBatches:           stats.ActiveBatches,
		TotalEntries:            stats.TotalEntries,
		UniqueAddresses:         stats.UniqueAddresses,
		VintageBreakdown:        vintages,
		StandardBreakdown:       wireBreakdowns(stats.StandardBreakdown),
		ProjectBreakdown:        wireBreakdowns(stats.ProjectBreakdown),
		TotalProjects:           total,
		VerifiedProjects:        verified,
		PendingProjects:         pending,
		VerifierNodes:           s.cfg.Registry.Verifiers(),
	}, nil
}

// handleGetLogEntries implements the getlogentries command.
func handleGetLogEntries(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.GetLogEntriesCmd)

	txLog := s.cfg.Ledger.Log()
	entries := txLog.Entries()
	if c.Address != nil {
		entries = txLog.ByParticipant(*c.Address)
	}

	result := make([]types.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if c.Kind != nil && string(entry.Kind) != *c.Kind {
			continue
		}
		result = append(result, wireEntry(entry))
	}
	return result, nil
}

// handleRecordFieldData implements the recordfielddata command.
func handleRecordFieldData(_ context.Context, s *Server, icmd interface{}) (interface{}, error) {
	c := icmd.(*types.RecordFieldDataCmd)
	record, err := fieldDataFromWire(c.FieldData)
	if err != nil {
		return nil, rpcInvalidError("invalid field data: %v", err)
	}
	entryID := s.cfg.Registry.RecordFieldData(record)
	return entryID.String(), nil
}

// handlePing implements the ping command.
func handlePing(_ context.Context, _ *Server, _ interface{}) (interface{}, error) {
	return nil, nil
}

// parsedRPCCmd represents a JSON-RPC request object that has been parsed
// into a known concrete command along with any error that might have
// happened while parsing it.
type parsedRPCCmd struct {
	jsonrpc string
	id      interface{}
	method  types.Method
	cmd     interface{}
	err     *dcrjson.RPCError
}

// parseCmd parses a JSON-RPC request object into known concrete
// command.  The err field of the returned parsedRPCCmd struct will
// contain an RPC error that is suitable for use in replies if the
// command is invalid in some way such as an unregistered command or
// invalid parameters.
func parseCmd(request *dcrjson.Request) *parsedRPCCmd {
	parsedCmd := parsedRPCCmd{
		jsonrpc: request.Jsonrpc,
		id:      request.ID,
		method:  types.Method(request.Method),
	}

	params, err := dcrjson.ParseParams(types.Method(request.Method),
		request.Params)
	if err != nil {
		// Produce a more specific error when the method is not
		// registered rather than an invalid parameters error.
		if errors.Is(err, dcrjson.ErrUnregisteredMethod) {
			parsedCmd.err = dcrjson.ErrRPCMethodNotFound
			return &parsedCmd
		}

		parsedCmd.err = dcrjson.NewRPCError(
			dcrjson.ErrRPCInvalidParams.Code, err.Error())
		return &parsedCmd
	}

	parsedCmd.cmd = params
	return &parsedCmd
}

// standardCmdResult checks that a parsed command is a standard
// JSON-RPC command and runs the appropriate handler to reply to the
// command.
func (s *Server) standardCmdResult(ctx context.Context, cmd *parsedRPCCmd) (interface{}, error) {
	handler, ok := rpcHandlers[cmd.method]
	if !ok {
		return nil, dcrjson.ErrRPCMethodNotFound
	}

	log.Tracef("Handling %s command: %v", cmd.method,
		newLogClosure(func() string { return spew.Sdump(cmd.cmd) }))
	return handler(ctx, s, cmd.cmd)
}

// createMarshalledReply returns a new marshalled JSON-RPC response
// given the passed parameters.  It will automatically convert errors
// that are not of the type *dcrjson.RPCError to the appropriate type as
// needed.
func createMarshalledReply(rpcVersion string, id interface{}, result interface{}, replyErr error) ([]byte, error) {
	var jsonErr *dcrjson.RPCError
	if replyErr != nil && !errors.As(replyErr, &jsonErr) {
		jsonErr = rpcInternalError(replyErr.Error(), "")
	}
	return dcrjson.MarshalResponse(rpcVersion, id, result, jsonErr)
}

// processRequest determines the incoming request type (single or
// batched), parses it and returns a marshalled response.
func (s *Server) processRequest(ctx context.Context, request *dcrjson.Request) []byte {
	var result interface{}
	var jsonErr error

	if request.Method == "" {
		jsonErr = &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCInvalidRequest.Code,
			Message: "Invalid request: malformed",
		}
		msg, err := createMarshalledReply(request.Jsonrpc, request.ID, result, jsonErr)
		if err != nil {
			log.Errorf("Failed to marshal reply: %v", err)
			return nil
		}
		return msg
	}

	parsedCmd := parseCmd(request)
	if parsedCmd.err != nil {
		jsonErr = parsedCmd.err
	} else {
		result, jsonErr = s.standardCmdResult(ctx, parsedCmd)
	}

	msg, err := createMarshalledReply(request.Jsonrpc, request.ID, result, jsonErr)
	if err != nil {
		log.Errorf("Failed to marshal reply: %v", err)
		return nil
	}
	return msg
}

// jsonRPCRead handles reading and responding to RPC messages.
func (s *Server) jsonRPCRead(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		errCode := http.StatusBadRequest
		http.Error(w, fmt.Sprintf("%d error reading JSON message: %v",
			errCode, err), errCode)
		return
	}

	var request dcrjson.Request
	if err := json.Unmarshal(body, &request); err != nil {
		jsonErr := &dcrjson.RPCError{
			Code: dcrjson.ErrRPCParse.Code,
			Message: fmt.Sprintf("Failed to parse request: %v",
				err),
		}
		resp, err := dcrjson.MarshalResponse("1.0", nil, nil, jsonErr)
		if err != nil {
			log.Errorf("Failed to create reply: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(resp)
		return
	}

	resp := s.processRequest(ctx, &request)
	if resp == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Errorf("Failed to write reply: %v", err)
	}
}

// route sets up the endpoints of the rpc server.
func (s *Server) route(ctx context.Context) *http.Server {
	rpcServeMux := http.NewServeMux()
	httpServer := &http.Server{
		Handler: rpcServeMux,

		// Timeout connections which don't complete the initial
		// handshake within the allowed timeframe.
		ReadTimeout: time.Second * rpcAuthTimeoutSeconds,
	}

	rpcServeMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		w.Header().Set("Content-Type", "application/json")
		r.Close = true

		if s.limitConnections(w, r.RemoteAddr) {
			return
		}
		s.numClients.Add(1)
		defer s.numClients.Add(-1)

		if _, err := s.checkAuth(r); err != nil {
			jsonAuthFail(w)
			return
		}
		s.jsonRPCRead(ctx, w, r)
	})

	rpcServeMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.checkAuth(r); err != nil {
			jsonAuthFail(w)
			return
		}
		s.websocketHandler(ctx, w, r)
	})

	return httpServer
}

// jsonAuthFail sends a message back to the client if the http auth is
// rejected.
func jsonAuthFail(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Basic realm="bluecarbond RPC"`)
	http.Error(w, "401 Unauthorized.", http.StatusUnauthorized)
}

// genCertPair generates a key/cert pair to the paths provided.
func genCertPair(certFile, keyFile string, altDNSNames []string) error {
	log.Infof("Generating TLS certificates...")

	org := "bluecarbond autogenerated cert"
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair(elliptic.P256(), org,
		validUntil, altDNSNames)
	if err != nil {
		return err
	}

	// Write cert and key files.
	if err = os.WriteFile(certFile, cert, 0644); err != nil {
		return err
	}
	if err = os.WriteFile(keyFile, key, 0600); err != nil {
		os.Remove(certFile)
		return err
	}

	log.Infof("Done generating TLS certificates")
	return nil
}

// setupListeners returns a slice of listeners that are configured per
// the configuration, generating a TLS keypair on first use when TLS is
// enabled and the configured pair does not exist.
func (s *Server) setupListeners() ([]net.Listener, error) {
	var tlsConfig *tls.Config
	if !s.cfg.DisableTLS {
		if !fileExists(s.cfg.KeyFile) && !fileExists(s.cfg.CertFile) {
			err := genCertPair(s.cfg.CertFile, s.cfg.KeyFile,
				s.cfg.AltDNSNames)
			if err != nil {
				return nil, err
			}
		}
		keypair, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}
	}

	listeners := make([]net.Listener, 0, len(s.cfg.Listeners))
	for _, addr := range s.cfg.Listeners {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			// Close all prior listeners on error.
			for _, l := range listeners {
				l.Close()
			}
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		if tlsConfig != nil {
			listener = tls.NewListener(listener, tlsConfig)
		}
		listeners = append(listeners, listener)
	}
	return listeners, nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		return !os.IsNotExist(err)
	}
	return true
}

// Run starts the RPC server and blocks until the provided context is
// cancelled.  All listeners are shut down before it returns.
func (s *Server) Run(ctx context.Context) error {
	log.Trace("Starting RPC server")
	listeners, err := s.setupListeners()
	if err != nil {
		return err
	}

	// Stream every appended log entry to websocket clients.
	s.cfg.Ledger.Log().Subscribe(s.ntfnMgr.notifyLogEntry)
	s.ntfnMgr.Start()

	httpServer := s.route(ctx)
	for _, listener := range listeners {
		s.wg.Add(1)
		go func(listener net.Listener) {
			log.Infof("RPC server listening on %s", listener.Addr())
			httpServer.Serve(listener)
			log.Tracef("RPC listener done for %s", listener.Addr())
			s.wg.Done()
		}(listener)
	}

	<-ctx.Done()
	log.Trace("RPC server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
	s.ntfnMgr.Shutdown()
	s.wg.Wait()

	log.Info("RPC server shutdown complete")
	return nil
}
