package orbex

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// MarginMode selects how a position is collateralized.
type MarginMode int32

const (
	MarginModeCross    MarginMode = 1
	MarginModeIsolated MarginMode = 2
)

// TimeInForce controls how long an order rests.
type TimeInForce int32

const (
	TimeInForceGTC      TimeInForce = 1
	TimeInForceIOC      TimeInForce = 2
	TimeInForceFOK      TimeInForce = 3
	TimeInForcePostOnly TimeInForce = 4
)

// TriggerType selects the price movement that activates a conditional order.
type TriggerType int32

const (
	TriggerTypeRisePast TriggerType = 1
	TriggerTypeFallPast TriggerType = 2
)

// TriggerPriceType selects the price feed a trigger is evaluated against.
type TriggerPriceType int32

const (
	TriggerPriceLast    TriggerPriceType = 1
	TriggerPriceAskBest TriggerPriceType = 2
	TriggerPriceBidBest TriggerPriceType = 3
	TriggerPriceMark    TriggerPriceType = 4
	TriggerPriceOracle  TriggerPriceType = 5
)

// CreateOrderParams describes a single order. Prices and sizes travel as
// decimal strings with an explicit scale; the venue owns the interpretation,
// the SDK only encodes.
type CreateOrderParams struct {
	SubaccountID string
	ExchangeID   string
	MarginMode   MarginMode
	Leverage     string
	IsBuy        bool
	PriceScale   int32
	PriceValue   string
	SizeScale    int32
	SizeValue    string
	// ClientOrderID is the caller's idempotency handle. Left empty, a fresh
	// UUID is assigned before signing.
	ClientOrderID string
	TimeInForce   TimeInForce
	ReduceOnly    bool
	// ExpireTime is the order expiry in milliseconds since the epoch.
	ExpireTime int64
	IsMarket   bool
	// IsPositionTp and IsPositionSl mark the order as a take-profit or
	// stop-loss attached to an existing position.
	IsPositionTp bool
	IsPositionSl bool
	// Trigger fields make the order conditional. A zero TriggerType means
	// the order is placed immediately.
	TriggerType       TriggerType
	TriggerPriceType  TriggerPriceType
	TriggerPriceValue string
	// IsSetOpenTp attaches a take-profit order that is placed when this
	// order opens its position; OpenTpParam describes it. Same for the
	// stop-loss pair.
	IsSetOpenTp bool
	OpenTpParam OpenTpSlParams
	IsSetOpenSl bool
	OpenSlParam OpenTpSlParams
}

// OpenTpSlParams describes the take-profit or stop-loss order attached to an
// opening order. It is only encoded when the corresponding IsSetOpen flag is
// set.
type OpenTpSlParams struct {
	// Price is the limit price of the attached order; empty means market.
	Price string
	Size  string
	// ClientOrderID is the idempotency handle of the attached order.
	ClientOrderID    string
	TriggerPriceType TriggerPriceType
	TriggerPrice     string
	// ExpireTime is the attached order's expiry in milliseconds.
	ExpireTime int64
}

// BatchOrder is one order inside a batch. Subaccount, exchange, margin mode,
// and leverage are shared across the batch and live on
// CreateOrderBatchParams.
type BatchOrder struct {
	IsBuy             bool
	PriceScale        int32
	PriceValue        string
	SizeScale         int32
	SizeValue         string
	ClientOrderID     string
	TimeInForce       TimeInForce
	ReduceOnly        bool
	ExpireTime        int64
	IsMarket          bool
	IsPositionTp      bool
	IsPositionSl      bool
	TriggerType       TriggerType
	TriggerPriceType  TriggerPriceType
	TriggerPriceValue string
	IsSetOpenTp       bool
	OpenTpParam       OpenTpSlParams
	IsSetOpenSl       bool
	OpenSlParam       OpenTpSlParams
}

// CreateOrderBatchParams places several orders on one exchange in a single
// transaction.
type CreateOrderBatchParams struct {
	SubaccountID string
	ExchangeID   string
	MarginMode   MarginMode
	Leverage     string
	Orders       []BatchOrder
}

// CancelOrderParams cancels specific orders by venue order ID.
type CancelOrderParams struct {
	SubaccountID string
	OrderIDs     []string
}

// CancelOrderByClientIDParams cancels specific orders by the client order
// IDs they were placed under.
type CancelOrderByClientIDParams struct {
	SubaccountID   string
	ClientOrderIDs []string
}

// CancelAllOrdersParams cancels every resting order of a subaccount,
// optionally restricted to a set of exchanges.
type CancelAllOrdersParams struct {
	SubaccountID      string
	FilterExchangeIDs []string
}

// CloseAllPositionsParams market-closes every open position of a subaccount,
// optionally restricted to a set of exchanges.
type CloseAllPositionsParams struct {
	SubaccountID      string
	FilterExchangeIDs []string
}

// CreateOrder signs and submits an order. Order operations use unordered
// replay protection so concurrent submissions never contend on a sequence.
// It returns the transaction hash and the client order ID actually used.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (txHash, clientOrderID string, err error) {
	if params.SubaccountID == "" {
		return "", "", errors.New("subaccount ID cannot be empty")
	}
	if params.ExchangeID == "" {
		return "", "", errors.New("exchange ID cannot be empty")
	}
	if params.ClientOrderID == "" {
		params.ClientOrderID = uuid.NewString()
	}

	txHash, err = c.SignAndSubmit(ctx, MsgCreateOrderTypeURL, params.marshal(c.Address()), SignOptions{Unordered: true})
	if err != nil {
		return "", "", err
	}
	return txHash, params.ClientOrderID, nil
}

// CreateOrderBatch signs and submits several orders as one transaction.
// Orders without a client order ID get a fresh UUID each; the IDs actually
// used are returned alongside the hash, in batch order.
func (c *Client) CreateOrderBatch(ctx context.Context, params CreateOrderBatchParams) (txHash string, clientOrderIDs []string, err error) {
	if params.SubaccountID == "" {
		return "", nil, errors.New("subaccount ID cannot be empty")
	}
	if params.ExchangeID == "" {
		return "", nil, errors.New("exchange ID cannot be empty")
	}
	if len(params.Orders) == 0 {
		return "", nil, errors.New("batch carries no orders")
	}

	clientOrderIDs = make([]string, len(params.Orders))
	for i := range params.Orders {
		if params.Orders[i].ClientOrderID == "" {
			params.Orders[i].ClientOrderID = uuid.NewString()
		}
		clientOrderIDs[i] = params.Orders[i].ClientOrderID
	}

	txHash, err = c.SignAndSubmit(ctx, MsgCreateOrderBatchTypeURL, params.marshal(c.Address()), SignOptions{Unordered: true})
	if err != nil {
		return "", nil, err
	}
	return txHash, clientOrderIDs, nil
}

// CancelOrder signs and submits a cancellation for the given order IDs.
func (c *Client) CancelOrder(ctx context.Context, params CancelOrderParams) (string, error) {
	if len(params.OrderIDs) == 0 {
		return "", errors.New("no order IDs to cancel")
	}
	return c.SignAndSubmit(ctx, MsgCancelOrderTypeURL, params.marshal(c.Address()), SignOptions{Unordered: true})
}

// CancelOrderByClientID signs and submits a cancellation keyed by client
// order IDs instead of venue order IDs.
func (c *Client) CancelOrderByClientID(ctx context.Context, params CancelOrderByClientIDParams) (string, error) {
	if len(params.ClientOrderIDs) == 0 {
		return "", errors.New("no client order IDs to cancel")
	}
	return c.SignAndSubmit(ctx, MsgCancelOrderByClientIdTypeURL, params.marshal(c.Address()), SignOptions{Unordered: true})
}

// CancelAllOrders signs and submits a cancel-all for a subaccount.
func (c *Client) CancelAllOrders(ctx context.Context, params CancelAllOrdersParams) (string, error) {
	if params.SubaccountID == "" {
		return "", errors.New("subaccount ID cannot be empty")
	}
	return c.SignAndSubmit(ctx, MsgCancelAllOrderTypeURL, params.marshal(c.Address()), SignOptions{Unordered: true})
}

// CloseAllPositions signs and submits a close-all for a subaccount's open
// positions.
func (c *Client) CloseAllPositions(ctx context.Context, params CloseAllPositionsParams) (string, error) {
	if params.SubaccountID == "" {
		return "", errors.New("subaccount ID cannot be empty")
	}
	return c.SignAndSubmit(ctx, MsgCloseAllPositionTypeURL, params.marshal(c.Address()), SignOptions{Unordered: true})
}

// Wire encodings of the venue order messages. Zero values are omitted per
// proto3 rules, matching the assembler's encoding discipline.

func (p CreateOrderParams) marshal(agentAddress string) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendStringField(buf, 2, p.SubaccountID)
	buf = appendStringField(buf, 3, p.ExchangeID)
	buf = appendVarintField(buf, 4, uint64(p.MarginMode))
	buf = appendStringField(buf, 5, p.Leverage)
	buf = appendBoolField(buf, 6, p.IsBuy)
	buf = appendVarintField(buf, 7, uint64(p.PriceScale))
	buf = appendStringField(buf, 8, p.PriceValue)
	buf = appendVarintField(buf, 9, uint64(p.SizeScale))
	buf = appendStringField(buf, 10, p.SizeValue)
	buf = appendStringField(buf, 11, p.ClientOrderID)
	buf = appendVarintField(buf, 12, uint64(p.TimeInForce))
	buf = appendBoolField(buf, 13, p.ReduceOnly)
	buf = appendVarintField(buf, 14, uint64(p.ExpireTime))
	buf = appendBoolField(buf, 15, p.IsMarket)
	buf = appendBoolField(buf, 16, p.IsPositionTp)
	buf = appendBoolField(buf, 17, p.IsPositionSl)
	buf = appendVarintField(buf, 18, uint64(p.TriggerType))
	buf = appendVarintField(buf, 19, uint64(p.TriggerPriceType))
	buf = appendStringField(buf, 20, p.TriggerPriceValue)
	if p.IsSetOpenTp {
		buf = appendBoolField(buf, 21, true)
		buf = appendMessageField(buf, 22, p.OpenTpParam.marshal())
	}
	if p.IsSetOpenSl {
		buf = appendBoolField(buf, 23, true)
		buf = appendMessageField(buf, 24, p.OpenSlParam.marshal())
	}
	return buf
}

func (p OpenTpSlParams) marshal() []byte {
	var buf []byte
	buf = appendStringField(buf, 1, p.Price)
	buf = appendStringField(buf, 2, p.Size)
	buf = appendStringField(buf, 3, p.ClientOrderID)
	buf = appendVarintField(buf, 4, uint64(p.TriggerPriceType))
	buf = appendStringField(buf, 5, p.TriggerPrice)
	buf = appendVarintField(buf, 6, uint64(p.ExpireTime))
	return buf
}

func (p CreateOrderBatchParams) marshal(agentAddress string) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendStringField(buf, 2, p.SubaccountID)
	buf = appendStringField(buf, 3, p.ExchangeID)
	buf = appendVarintField(buf, 4, uint64(p.MarginMode))
	buf = appendStringField(buf, 5, p.Leverage)
	for _, order := range p.Orders {
		buf = appendMessageField(buf, 6, order.marshal())
	}
	return buf
}

func (o BatchOrder) marshal() []byte {
	var buf []byte
	buf = appendBoolField(buf, 1, o.IsBuy)
	buf = appendVarintField(buf, 2, uint64(o.PriceScale))
	buf = appendStringField(buf, 3, o.PriceValue)
	buf = appendVarintField(buf, 4, uint64(o.SizeScale))
	buf = appendStringField(buf, 5, o.SizeValue)
	buf = appendStringField(buf, 6, o.ClientOrderID)
	buf = appendVarintField(buf, 7, uint64(o.TimeInForce))
	buf = appendBoolField(buf, 8, o.ReduceOnly)
	buf = appendVarintField(buf, 9, uint64(o.ExpireTime))
	buf = appendBoolField(buf, 10, o.IsMarket)
	buf = appendBoolField(buf, 11, o.IsPositionTp)
	buf = appendBoolField(buf, 12, o.IsPositionSl)
	buf = appendVarintField(buf, 13, uint64(o.TriggerType))
	buf = appendVarintField(buf, 14, uint64(o.TriggerPriceType))
	buf = appendStringField(buf, 15, o.TriggerPriceValue)
	if o.IsSetOpenTp {
		buf = appendBoolField(buf, 16, true)
		buf = appendMessageField(buf, 17, o.OpenTpParam.marshal())
	}
	if o.IsSetOpenSl {
		buf = appendBoolField(buf, 18, true)
		buf = appendMessageField(buf, 19, o.OpenSlParam.marshal())
	}
	return buf
}

func (p CancelOrderParams) marshal(agentAddress string) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendStringField(buf, 2, p.SubaccountID)
	for _, id := range p.OrderIDs {
		buf = appendStringField(buf, 3, id)
	}
	return buf
}

func (p CancelOrderByClientIDParams) marshal(agentAddress string) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendStringField(buf, 2, p.SubaccountID)
	for _, id := range p.ClientOrderIDs {
		buf = appendStringField(buf, 3, id)
	}
	return buf
}

func (p CancelAllOrdersParams) marshal(agentAddress string) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendStringField(buf, 2, p.SubaccountID)
	for _, id := range p.FilterExchangeIDs {
		buf = appendStringField(buf, 3, id)
	}
	return buf
}

func (p CloseAllPositionsParams) marshal(agentAddress string) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendStringField(buf, 2, p.SubaccountID)
	for _, id := range p.FilterExchangeIDs {
		buf = appendStringField(buf, 3, id)
	}
	return buf
}

func appendStringField(buf []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendString(buf, s)
}

func appendVarintField(buf []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, v)
}

func appendBoolField(buf []byte, num protowire.Number, v bool) []byte {
	if !v {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, 1)
}

// appendMessageField always emits the field, even when the nested message is
// empty; callers decide presence.
func appendMessageField(buf []byte, num protowire.Number, msg []byte) []byte {
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendBytes(buf, msg)
}
