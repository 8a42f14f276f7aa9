package orbex

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Coin is a tradeable or collateral asset listed on the venue.
type Coin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	StepSizeScale int32  `json:"stepSizeScale"`
}

// TradeSetting is a subaccount's per-exchange margin configuration.
type TradeSetting struct {
	ExchangeID string `json:"exchangeId"`
	MarginMode uint32 `json:"marginMode"`
	Leverage   uint32 `json:"leverage"`
}

// Subaccount is a trading account registered under a chain address.
type Subaccount struct {
	ID              string         `json:"id"`
	ChainType       int32          `json:"chainType"`
	ChainAddress    string         `json:"chainAddress"`
	ClientAccountID string         `json:"clientAccountId"`
	TakerFeeRatePpm uint32         `json:"takerFeeRatePpm"`
	MakerFeeRatePpm uint32         `json:"makerFeeRatePpm"`
	TradeSettings   []TradeSetting `json:"tradeSetting"`
}

// Exchange is a listed market together with its tick and step scales.
type Exchange struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	BaseCoinID    string `json:"baseCoinId"`
	QuoteCoinID   string `json:"quoteCoinId"`
	StepSizeScale int32  `json:"stepSizeScale"`
	TickSizeScale int32  `json:"tickSizeScale"`
	OrderSizeMax  string `json:"orderSizeMax"`
}

// Order is the venue's view of a resting or historical order. Decimal
// quantities travel as strings; the venue owns their precision.
type Order struct {
	ID               string `json:"id"`
	SubaccountID     string `json:"subaccountId"`
	ExchangeID       string `json:"exchangeId"`
	IsBuy            bool   `json:"isBuy"`
	Price            string `json:"price"`
	Size             string `json:"size"`
	ClientOrderID    string `json:"clientOrderId"`
	TimeInForce      uint32 `json:"timeInForce"`
	ReduceOnly       bool   `json:"reduceOnly"`
	ExpireTime       uint64 `json:"expireTime"`
	IsPositionTp     bool   `json:"isPositionTp"`
	IsPositionSl     bool   `json:"isPositionSl"`
	TriggerType      uint32 `json:"triggerType"`
	TriggerPriceType uint32 `json:"triggerPriceType"`
	TriggerPrice     string `json:"triggerPrice"`
	Status           uint32 `json:"status"`
	CumFillSize      string `json:"cumFillSize"`
	CumFillValue     string `json:"cumFillValue"`
	CreatedTime      uint64 `json:"createdTime"`
	UpdatedTime      uint64 `json:"updatedTime"`
}

// PageOffset is the cursor for the next page of a paginated query. Both
// fields empty means there are no further pages.
type PageOffset struct {
	CreateTime string `json:"createTime"`
	ItemID     string `json:"itemId"`
}

// ActiveOrdersQuery selects a page of a subaccount's resting orders.
type ActiveOrdersQuery struct {
	SubaccountID string
	// Size is the page size, at most 100.
	Size uint32
	// Page resumes from the cursor of a previous page.
	Page PageOffset
	// Filters narrow the result; an empty filter matches everything.
	FilterExchangeIDs []string
	FilterOrderIDs    []string
	// FilterStartCreatedTime and FilterEndCreatedTime bound the creation
	// time, inclusive start and exclusive end, in milliseconds. Zero means
	// unbounded.
	FilterStartCreatedTime uint64
	FilterEndCreatedTime   uint64
}

// ActiveOrdersPage is one page of resting orders plus the cursor for the
// next one.
type ActiveOrdersPage struct {
	Orders   []Order
	NextPage PageOffset
}

type coinListResponse struct {
	baseResp
	Data struct {
		CoinList []Coin `json:"coinList"`
	} `json:"data"`
}

type subaccountListResponse struct {
	baseResp
	Data struct {
		SubaccountList []Subaccount `json:"subaccountList"`
	} `json:"data"`
}

type exchangeListResponse struct {
	baseResp
	Data struct {
		ExchangeList []Exchange `json:"exchangeList"`
	} `json:"data"`
}

type activeOrdersResponse struct {
	baseResp
	Data struct {
		OrderList      []Order    `json:"orderList"`
		PageOffsetData PageOffset `json:"pageOffsetData"`
	} `json:"data"`
}

// CoinList fetches the venue's listed coins.
func (g *Gateway) CoinList(ctx context.Context) ([]Coin, error) {
	var result coinListResponse
	if err := g.get(ctx, coinListPath, nil, &result); err != nil {
		return nil, err
	}
	if !result.ok() {
		return nil, fmt.Errorf("failed to fetch coin list: code %s: %s", result.Code, result.Msg)
	}
	return result.Data.CoinList, nil
}

// SubaccountList fetches the subaccounts registered for a chain address and
// its bound agent.
func (g *Gateway) SubaccountList(ctx context.Context, chainType int32, chainAddress, agentAddress string) ([]Subaccount, error) {
	var result subaccountListResponse
	params := map[string]string{
		"chainType":    strconv.FormatInt(int64(chainType), 10),
		"chainAddress": chainAddress,
		"agentAddress": agentAddress,
	}
	if err := g.get(ctx, subaccountListPath, params, &result); err != nil {
		return nil, err
	}
	if !result.ok() {
		return nil, fmt.Errorf("failed to fetch subaccount list: code %s: %s", result.Code, result.Msg)
	}
	return result.Data.SubaccountList, nil
}

// ExchangeList fetches the venue's listed markets.
func (g *Gateway) ExchangeList(ctx context.Context) ([]Exchange, error) {
	var result exchangeListResponse
	if err := g.get(ctx, exchangeListPath, nil, &result); err != nil {
		return nil, err
	}
	if !result.ok() {
		return nil, fmt.Errorf("failed to fetch exchange list: code %s: %s", result.Code, result.Msg)
	}
	return result.Data.ExchangeList, nil
}

// ActiveOrders fetches one page of a subaccount's resting orders.
func (g *Gateway) ActiveOrders(ctx context.Context, query ActiveOrdersQuery) (ActiveOrdersPage, error) {
	params := map[string]string{
		"subaccountId": query.SubaccountID,
		"size":         strconv.FormatUint(uint64(query.Size), 10),
	}
	if query.Page.CreateTime != "" {
		params["pageOffsetDataCreatedTime"] = query.Page.CreateTime
	}
	if query.Page.ItemID != "" {
		params["pageOffsetDataItemId"] = query.Page.ItemID
	}
	if len(query.FilterExchangeIDs) > 0 {
		params["filterExchangeIdList"] = strings.Join(query.FilterExchangeIDs, ",")
	}
	if len(query.FilterOrderIDs) > 0 {
		params["filterOrderIdList"] = strings.Join(query.FilterOrderIDs, ",")
	}
	if query.FilterStartCreatedTime > 0 {
		params["filterStartCreatedTimeInclusive"] = strconv.FormatUint(query.FilterStartCreatedTime, 10)
	}
	if query.FilterEndCreatedTime > 0 {
		params["filterEndCreatedTimeExclusive"] = strconv.FormatUint(query.FilterEndCreatedTime, 10)
	}

	var result activeOrdersResponse
	if err := g.get(ctx, activeOrderPath, params, &result); err != nil {
		return ActiveOrdersPage{}, err
	}
	if !result.ok() {
		return ActiveOrdersPage{}, fmt.Errorf("failed to fetch active orders: code %s: %s", result.Code, result.Msg)
	}
	return ActiveOrdersPage{Orders: result.Data.OrderList, NextPage: result.Data.PageOffsetData}, nil
}

// Query conveniences on the client, delegating to its gateway.

// CoinList fetches the venue's listed coins.
func (c *Client) CoinList(ctx context.Context) ([]Coin, error) {
	return c.gateway.CoinList(ctx)
}

// SubaccountList fetches the subaccounts of the given chain identity bound
// to this client's agent address.
func (c *Client) SubaccountList(ctx context.Context, chainType int32, chainAddress string) ([]Subaccount, error) {
	return c.gateway.SubaccountList(ctx, chainType, chainAddress, c.Address())
}

// ExchangeList fetches the venue's listed markets.
func (c *Client) ExchangeList(ctx context.Context) ([]Exchange, error) {
	return c.gateway.ExchangeList(ctx)
}

// ActiveOrders fetches one page of a subaccount's resting orders.
func (c *Client) ActiveOrders(ctx context.Context, query ActiveOrdersQuery) (ActiveOrdersPage, error) {
	return c.gateway.ActiveOrders(ctx, query)
}
