package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

// memoryDB is a DBClient keeping records in a map. Every conditional update checks
// the same conditions as the mongo filters under a single lock.
type memoryDB struct {
	mu      sync.Mutex
	txs     map[string]model.BridgeTransactionDocument
	memos   map[string]string
	inbound map[string]string
	unproc  []model.UnprocessableMessageDocument
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		txs:     map[string]model.BridgeTransactionDocument{},
		memos:   map[string]string{},
		inbound: map[string]string{},
	}
}

func (m *memoryDB) Ping(context.Context) error { return nil }

func (m *memoryDB) SaveBridgeTransaction(_ context.Context, doc *model.BridgeTransactionDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	memoKey := doc.SourceChain.ToString() + "/" + doc.ExpectedMemo
	if _, ok := m.txs[doc.ID]; ok {
		return &db.DuplicateKeyError{Key: doc.ID, Message: "duplicate"}
	}
	if doc.ExpectedMemo != "" {
		if _, ok := m.memos[memoKey]; ok {
			return &db.DuplicateKeyError{Key: doc.ExpectedMemo, Message: "duplicate memo"}
		}
		m.memos[memoKey] = doc.ID
	}
	m.txs[doc.ID] = clone(*doc)
	return nil
}

func (m *memoryDB) FindBridgeTransactionByID(_ context.Context, id string) (*model.BridgeTransactionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.txs[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "Bridge transaction not found"}
	}
	out := clone(doc)
	return &out, nil
}

func (m *memoryDB) FindBridgeTransactions(
	_ context.Context, filter model.BridgeTransactionFilter, paginationToken string,
) (*db.DbResultMap[model.BridgeTransactionDocument], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if paginationToken != "" {
		return nil, &db.InvalidPaginationTokenError{Message: "Invalid pagination token"}
	}
	var out []model.BridgeTransactionDocument
	for _, d := range m.txs {
		if d.SourceAddress != filter.Address && d.DestinationAddress != filter.Address {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Chain != "" && d.SourceChain != filter.Chain && d.DestinationChain != filter.Chain {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return &db.DbResultMap[model.BridgeTransactionDocument]{Data: out}, nil
}

// update applies mutate when cond holds for the record, mirroring FindOneAndUpdate.
func (m *memoryDB) update(
	id string, cond func(d *model.BridgeTransactionDocument) bool, mutate func(d *model.BridgeTransactionDocument) error,
) (*model.BridgeTransactionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.txs[id]
	if !ok || !cond(&doc) {
		return nil, &db.NotFoundError{Key: id, Message: "not found or not eligible"}
	}
	if err := mutate(&doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = utils.NowMilli()
	doc.StatusHistory = append(doc.StatusHistory, model.StatusChange{Status: doc.Status, At: doc.UpdatedAt})
	m.txs[id] = doc
	out := clone(doc)
	return &out, nil
}

func (m *memoryDB) TransitionToVerifying(_ context.Context, id string) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		if d.InboundTxHash != "" {
			return false
		}
		return d.Status == types.Pending || d.Status == types.Verifying ||
			(d.Status == types.Failed && d.FailureStage == types.VerificationStage)
	}, func(d *model.BridgeTransactionDocument) error {
		d.Status = types.Verifying
		clearError(d)
		return nil
	})
}

func (m *memoryDB) MarkVerified(_ context.Context, id, inboundTxHash string) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		return d.Status == types.Verifying && d.InboundTxHash == ""
	}, func(d *model.BridgeTransactionDocument) error {
		if owner, ok := m.inbound[inboundTxHash]; ok && owner != id {
			return &db.DuplicateKeyError{Key: inboundTxHash, Message: "duplicate inbound hash"}
		}
		m.inbound[inboundTxHash] = id
		d.Status = types.Verified
		d.InboundTxHash = inboundTxHash
		return nil
	})
}

func (m *memoryDB) MarkVerificationFailed(
	_ context.Context, id, errorCode, errorMessage string,
) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		return d.Status == types.Verifying
	}, func(d *model.BridgeTransactionDocument) error {
		d.Status = types.Failed
		d.FailureStage = types.VerificationStage
		d.ErrorCode, d.ErrorMessage = errorCode, errorMessage
		return nil
	})
}

func (m *memoryDB) TransitionToExecuting(_ context.Context, id string) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		return d.Status == types.Verified && d.OutboundTxHash == ""
	}, func(d *model.BridgeTransactionDocument) error {
		d.Status = types.Executing
		d.DistributionStartedAt = utils.NowMilli()
		return nil
	})
}

func (m *memoryDB) TransitionFailedToExecuting(
	_ context.Context, id string, maxRestarts int,
) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		return d.Status == types.Failed && d.FailureStage == types.DistributionStage &&
			d.OutboundTxHash == "" && d.RetryCount < maxRestarts
	}, func(d *model.BridgeTransactionDocument) error {
		d.Status = types.Executing
		d.DistributionStartedAt = utils.NowMilli()
		d.RetryCount++
		clearError(d)
		return nil
	})
}

func (m *memoryDB) MarkCompleted(
	_ context.Context, id, outboundTxHash string, attempt model.DistributionAttempt,
) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		return d.Status == types.Executing && d.OutboundTxHash == ""
	}, func(d *model.BridgeTransactionDocument) error {
		d.Status = types.Completed
		d.OutboundTxHash = outboundTxHash
		d.DistributionAttempts = append(d.DistributionAttempts, attempt)
		return nil
	})
}

func (m *memoryDB) MarkDistributionFailed(
	_ context.Context, id, errorCode, errorMessage string, attempt model.DistributionAttempt,
) (*model.BridgeTransactionDocument, error) {
	return m.update(id, func(d *model.BridgeTransactionDocument) bool {
		return d.Status == types.Executing && d.OutboundTxHash == ""
	}, func(d *model.BridgeTransactionDocument) error {
		d.Status = types.Failed
		d.FailureStage = types.DistributionStage
		d.ErrorCode, d.ErrorMessage = errorCode, errorMessage
		d.DistributionAttempts = append(d.DistributionAttempts, attempt)
		return nil
	})
}

func (m *memoryDB) FindRestartableTransactions(
	_ context.Context, maxRestarts int, limit int64,
) ([]model.BridgeTransactionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BridgeTransactionDocument
	for _, d := range m.txs {
		if d.Status == types.Failed && d.FailureStage == types.DistributionStage &&
			d.OutboundTxHash == "" && d.RetryCount < maxRestarts && !d.HasAmbiguousAttempt() {
			out = append(out, clone(d))
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryDB) FailStaleExecutingTransactions(_ context.Context, updatedBefore int64, limit int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var moved int64
	for id, d := range m.txs {
		if moved == limit {
			break
		}
		if d.Status != types.Executing || d.OutboundTxHash != "" || d.UpdatedAt >= updatedBefore {
			continue
		}
		d.Status = types.Failed
		d.FailureStage = types.DistributionStage
		d.ErrorCode = types.DistributionError.String()
		d.DistributionAttempts = append(d.DistributionAttempts, model.DistributionAttempt{
			Outcome: model.AttemptAmbiguous, Ambiguous: true,
		})
		m.txs[id] = d
		moved++
	}
	return moved, nil
}

func (m *memoryDB) SaveUnprocessableMessage(_ context.Context, body, receipt, queueName, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unproc = append(m.unproc, *model.NewUnprocessableMessageDocument(body, receipt, queueName, reason, utils.NowMilli()))
	return nil
}

func (m *memoryDB) FindUnprocessableMessages(context.Context) ([]model.UnprocessableMessageDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.UnprocessableMessageDocument(nil), m.unproc...), nil
}

func (m *memoryDB) DeleteUnprocessableMessage(context.Context, interface{}) error { return nil }

// set overwrites a record, for arranging test states.
func (m *memoryDB) set(doc model.BridgeTransactionDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[doc.ID] = clone(doc)
}

func (m *memoryDB) get(id string) model.BridgeTransactionDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.txs[id])
}

func clearError(d *model.BridgeTransactionDocument) {
	d.FailureStage, d.ErrorCode, d.ErrorMessage = "", "", ""
}

func clone(d model.BridgeTransactionDocument) model.BridgeTransactionDocument {
	d.DistributionAttempts = append([]model.DistributionAttempt(nil), d.DistributionAttempts...)
	d.StatusHistory = append([]model.StatusChange(nil), d.StatusHistory...)
	return d
}

type staticPrices map[types.TokenSymbol]string

func (p staticPrices) UsdPrice(_ context.Context, symbol types.TokenSymbol) (decimal.Decimal, *types.Error) {
	v, ok := p[symbol]
	if !ok {
		return decimal.Zero, types.NewBridgeError(types.PriceUnavailable, "no price for "+symbol.ToString())
	}
	return decimal.RequireFromString(v), nil
}

// fakeAdapter is a scriptable chain adapter.
type fakeAdapter struct {
	chain types.Chain
	memo  bool
	bank  string

	mu       sync.Mutex
	payments map[string]*chains.IncomingPayment
	findErr  error
	sendErr  error
	sends    []chains.PaymentRequest
	// sendGate blocks SendPayment until closed, when set
	sendGate chan struct{}
}

func newFakeAdapter(chain types.Chain, memo bool, bank string) *fakeAdapter {
	return &fakeAdapter{chain: chain, memo: memo, bank: bank, payments: map[string]*chains.IncomingPayment{}}
}

func (f *fakeAdapter) Chain() types.Chain { return f.chain }
func (f *fakeAdapter) SupportsMemo() bool { return f.memo }
func (f *fakeAdapter) BankAddress() string { return f.bank }
func (f *fakeAdapter) ExplorerURLFor(h string) string {
	return "https://explorer.test/" + f.chain.ToString() + "/" + h
}

func (f *fakeAdapter) ValidateAddress(address string) error {
	switch f.chain {
	case types.ChainXRPL:
		return utils.ValidateXrplAddress(address)
	case types.ChainBitcoin:
		params, _ := utils.GetBtcNetParamesFromString("mainnet")
		return utils.ValidateBtcAddress(address, params)
	default:
		return utils.ValidateEvmAddress(address)
	}
}

func (f *fakeAdapter) FindIncomingPayment(_ context.Context, q chains.PaymentQuery) (*chains.IncomingPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.payments[q.TxHash]
	if !ok {
		return nil, chains.ErrPaymentNotFound
	}
	if p.To != q.DepositAddress {
		return nil, chains.NewPaymentMismatch("paid to %s", p.To)
	}
	if q.Memo != "" && p.Memo != q.Memo {
		return nil, chains.NewPaymentMismatch("memo %q", p.Memo)
	}
	if p.Amount.LessThan(q.MinAmount) {
		return nil, chains.NewPaymentMismatch("amount %s below %s", p.Amount, q.MinAmount)
	}
	return p, nil
}

func (f *fakeAdapter) SendPayment(ctx context.Context, req chains.PaymentRequest) (string, error) {
	f.mu.Lock()
	gate := f.sendGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", chains.NewAmbiguousSend(ctx.Err(), "")
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, req)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "OUT" + req.Reference, nil
}

func (f *fakeAdapter) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

const testRoutes = `
routes:
  - from: XRP
    to: RDL
    min_amount: "1"
  - from: RDL
    to: XRP
    min_amount: "1"
  - from: XRP
    to: ETH
    min_amount: "10"
  - from: BTC
    to: XRP
    min_amount: "0.0001"
`

type testEnv struct {
	svc    *Services
	db     *memoryDB
	xrpl   *fakeAdapter
	eth    *fakeAdapter
	btc    *fakeAdapter
	prices staticPrices
}

const (
	bankXrpl = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	userXrpl = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
	bankBtc  = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	userEth  = "0x52908400098527886E0F7030069857D2E4169EE7"
)

func newTestEnv(routesYaml string) *testEnv {
	routes, err := types.ParseSupportedRoutes([]byte(routesYaml))
	if err != nil {
		panic(err)
	}
	env := &testEnv{
		db:   newMemoryDB(),
		xrpl: newFakeAdapter(types.ChainXRPL, true, bankXrpl),
		eth:  newFakeAdapter(types.ChainEthereum, false, "0x8617E340B3D01FA5F11F306F4090FD50E238070D"),
		btc:  newFakeAdapter(types.ChainBitcoin, false, bankBtc),
		prices: staticPrices{
			types.TokenXRP: "0.5",
			types.TokenRDL: "0.25",
			types.TokenETH: "2000",
			types.TokenBTC: "60000",
		},
	}
	cfg := &config.Config{
		Bridge: config.BridgeConfig{
			MaxRestartAttempts:       2,
			VerificationPollBudget:   200 * time.Millisecond,
			VerificationPollInterval: 10 * time.Millisecond,
			DistributionTimeout:      time.Second,
			StaleExecutingAfter:      time.Minute,
		},
	}
	env.svc = &Services{
		DbClient: env.db,
		cfg:      cfg,
		routes:   routes,
		prices:   env.prices,
		chains:   chains.NewRegistry(env.xrpl, env.eth, env.btc),
	}
	return env
}
