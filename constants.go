package orbex

// Gateway API paths.
const (
	baseAPIPath = "/api/v1"

	accountInfoPath     = baseAPIPath + "/account/getAccountInfo"
	sendTransactionPath = baseAPIPath + "/trade/sendTransaction"

	subaccountListPath = baseAPIPath + "/subaccount/getSubaccount"
	coinListPath       = baseAPIPath + "/trade/getCoinList"
	exchangeListPath   = baseAPIPath + "/trade/getExchangeList"
	activeOrderPath    = baseAPIPath + "/trade/getActiveOrder"

	websocketPath = baseAPIPath + "/ws"
)

// Transaction message type URLs. The gateway routes a submission by the type
// URL declared on it; these are configuration constants of the chain schema
// and are always passed explicitly, never inferred from payload bytes.
const (
	MsgCreateOrderTypeURL           = "/orbex.order.MsgCreateOrder"
	MsgCreateOrderBatchTypeURL      = "/orbex.order.MsgCreateOrderBatch"
	MsgCancelOrderTypeURL           = "/orbex.order.MsgCancelOrder"
	MsgCancelOrderByClientIdTypeURL = "/orbex.order.MsgCancelOrderByClientId"
	MsgCancelAllOrderTypeURL        = "/orbex.order.MsgCancelAllOrder"
	MsgCloseAllPositionTypeURL      = "/orbex.order.MsgCloseAllPosition"

	MsgBindAgentTypeURL = "/orbex.agent.MsgBindAgent"
)

// AccountHRP is the default bech32 prefix for account addresses.
const AccountHRP = "orb"

const (
	// defaultGasLimit is applied when a transaction does not set its own.
	defaultGasLimit = 200_000
	// defaultUnorderedWindow is how far in the future an unordered
	// transaction's timeout timestamp is placed. The venue rejects windows
	// much longer than this.
	defaultUnorderedWindow = 10 // seconds
)
