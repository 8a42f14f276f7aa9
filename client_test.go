package orbex

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbexchain/orbex-go/pkg/bech32"
	"github.com/orbexchain/orbex-go/pkg/log"
	"github.com/orbexchain/orbex-go/pkg/sign"
)

const testKeyHex = "0101010101010101010101010101010101010101010101010101010101010101"

// gatewayStub is an httptest-backed venue gateway. It serves a fixed account
// state and records every submission.
type gatewayStub struct {
	t *testing.T

	accountNumber string
	sequence      string
	accountCode   string
	submitCode    string
	txHash        string

	accountCalls atomic.Int64
	lastSubmit   atomic.Pointer[SubmitRequest]
}

func newGatewayStub(t *testing.T) *gatewayStub {
	return &gatewayStub{
		t:             t,
		accountNumber: "7",
		sequence:      "3",
		accountCode:   "0",
		submitCode:    "0",
		txHash:        "0xdeadbeef",
	}
}

func (g *gatewayStub) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(accountInfoPath, func(w http.ResponseWriter, r *http.Request) {
		g.accountCalls.Add(1)
		assert.NotEmpty(t, r.URL.Query().Get("address"))
		fmt.Fprintf(w, `{"code":%q,"msg":"ok","data":{"accountNumber":%q,"sequence":%q}}`,
			g.accountCode, g.accountNumber, g.sequence)
	})
	mux.HandleFunc(sendTransactionPath, func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		g.lastSubmit.Store(&req)
		fmt.Fprintf(w, `{"code":%q,"msg":"ok","data":{"txHash":%q}}`, g.submitCode, g.txHash)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, stub *gatewayStub, opts ...Option) *Client {
	t.Helper()
	srv := stub.serve(t)
	cfg := Config{
		GatewayURL:    srv.URL,
		ChainID:       "orbex-devnet",
		PrivateKeyHex: testKeyHex,
		AccountHRP:    AccountHRP,
	}
	opts = append([]Option{WithLogger(log.NewNoopLogger())}, opts...)
	client, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGatewayAccountState(t *testing.T) {
	t.Run("Parses string-encoded numbers", func(t *testing.T) {
		stub := newGatewayStub(t)
		stub.accountNumber, stub.sequence = "12345", "99"
		gw := NewGateway(stub.serve(t).URL, log.NewNoopLogger())

		state, err := gw.AccountState(context.Background(), "orb1addr")
		require.NoError(t, err)
		assert.Equal(t, AccountState{AccountNumber: 12345, Sequence: 99}, state)
	})

	t.Run("Gateway error code", func(t *testing.T) {
		stub := newGatewayStub(t)
		stub.accountCode = "4001"
		gw := NewGateway(stub.serve(t).URL, log.NewNoopLogger())

		_, err := gw.AccountState(context.Background(), "orb1addr")
		assert.ErrorIs(t, err, ErrAccountStateUnavailable)
		assert.Contains(t, err.Error(), "4001")
	})

	t.Run("Malformed account number", func(t *testing.T) {
		stub := newGatewayStub(t)
		stub.accountNumber = "not-a-number"
		gw := NewGateway(stub.serve(t).URL, log.NewNoopLogger())

		_, err := gw.AccountState(context.Background(), "orb1addr")
		assert.ErrorIs(t, err, ErrAccountStateUnavailable)
	})

	t.Run("Unreachable gateway", func(t *testing.T) {
		gw := NewGateway("http://127.0.0.1:1", log.NewNoopLogger())
		_, err := gw.AccountState(context.Background(), "orb1addr")
		assert.ErrorIs(t, err, ErrAccountStateUnavailable)
	})
}

func TestGatewaySubmitRawTx(t *testing.T) {
	t.Run("Returns the reported hash", func(t *testing.T) {
		stub := newGatewayStub(t)
		gw := NewGateway(stub.serve(t).URL, log.NewNoopLogger())

		hash, err := gw.SubmitRawTx(context.Background(), SubmitRequest{
			TypeURL:       "/x.Msg",
			RawTx:         "AAEC",
			AccountNumber: 7,
		})
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", hash)

		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, "/x.Msg", sent.TypeURL)
		assert.Equal(t, uint64(7), sent.AccountNumber)
	})

	t.Run("Gateway rejection", func(t *testing.T) {
		stub := newGatewayStub(t)
		stub.submitCode = "5001"
		gw := NewGateway(stub.serve(t).URL, log.NewNoopLogger())

		_, err := gw.SubmitRawTx(context.Background(), SubmitRequest{TypeURL: "/x.Msg"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "5001")
	})
}

func TestClientCreateOrder(t *testing.T) {
	stub := newGatewayStub(t)
	registry := prometheus.NewRegistry()
	metrics := NewMetricsWithRegistry(registry)
	client := newTestClient(t, stub, WithMetrics(metrics))

	txHash, clientOrderID, err := client.CreateOrder(context.Background(), CreateOrderParams{
		SubaccountID: "1001",
		ExchangeID:   "BTC-USDT",
		IsBuy:        true,
		PriceValue:   "65000",
		SizeValue:    "0.5",
	})
	require.NoError(t, err)

	t.Run("Returns hash and generated client order ID", func(t *testing.T) {
		assert.Equal(t, "0xdeadbeef", txHash)
		_, err := uuid.Parse(clientOrderID)
		assert.NoError(t, err, "client order ID should be a UUID")
	})

	t.Run("Submission is well-formed", func(t *testing.T) {
		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, MsgCreateOrderTypeURL, sent.TypeURL)
		assert.Equal(t, uint64(7), sent.AccountNumber)

		rawTx, err := base64.StdEncoding.DecodeString(sent.RawTx)
		require.NoError(t, err)
		fields := scanFields(t, rawTx)

		// TxRaw: body, auth info, one 64-byte signature.
		var sigLen int
		for _, f := range fields {
			if f.num == 3 {
				sigLen = len(f.bytes)
			}
		}
		assert.Equal(t, 64, sigLen)

		// Orders ride unordered transactions.
		unordered, timeoutNs := scanBodyReplayFields(t, fields[0].bytes)
		assert.True(t, unordered)
		assert.Positive(t, timeoutNs)
	})

	t.Run("Account state fetched once, not per order", func(t *testing.T) {
		before := stub.accountCalls.Load()
		_, _, err := client.CreateOrder(context.Background(), CreateOrderParams{
			SubaccountID: "1001",
			ExchangeID:   "ETH-USDT",
			SizeValue:    "1",
			PriceValue:   "3000",
		})
		require.NoError(t, err)
		assert.Equal(t, before, stub.accountCalls.Load())
	})

	t.Run("Metrics recorded", func(t *testing.T) {
		signed := testutil.ToFloat64(metrics.TxSignedTotal.WithLabelValues(MsgCreateOrderTypeURL, "unordered"))
		assert.Equal(t, float64(2), signed)
		submitted := testutil.ToFloat64(metrics.TxSubmitted.WithLabelValues(MsgCreateOrderTypeURL, "success"))
		assert.Equal(t, float64(2), submitted)
	})
}

func TestClientCreateOrderBatch(t *testing.T) {
	stub := newGatewayStub(t)
	client := newTestClient(t, stub)

	t.Run("Requires orders", func(t *testing.T) {
		_, _, err := client.CreateOrderBatch(context.Background(), CreateOrderBatchParams{
			SubaccountID: "1001",
			ExchangeID:   "BTC-USDT",
		})
		assert.Error(t, err)
	})

	t.Run("Assigns missing client order IDs and keeps given ones", func(t *testing.T) {
		txHash, ids, err := client.CreateOrderBatch(context.Background(), CreateOrderBatchParams{
			SubaccountID: "1001",
			ExchangeID:   "BTC-USDT",
			Orders: []BatchOrder{
				{IsBuy: true, PriceValue: "65000", SizeValue: "0.5"},
				{PriceValue: "64000", SizeValue: "1", ClientOrderID: "mine"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", txHash)

		require.Len(t, ids, 2)
		_, err = uuid.Parse(ids[0])
		assert.NoError(t, err, "generated ID should be a UUID")
		assert.Equal(t, "mine", ids[1])

		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, MsgCreateOrderBatchTypeURL, sent.TypeURL)

		// Batches ride unordered transactions like single orders.
		rawTx, err := base64.StdEncoding.DecodeString(sent.RawTx)
		require.NoError(t, err)
		fields := scanFields(t, rawTx)
		unordered, timeoutNs := scanBodyReplayFields(t, fields[0].bytes)
		assert.True(t, unordered)
		assert.Positive(t, timeoutNs)
	})
}

func TestClientCancelOrder(t *testing.T) {
	stub := newGatewayStub(t)
	client := newTestClient(t, stub)

	t.Run("Cancel requires order IDs", func(t *testing.T) {
		_, err := client.CancelOrder(context.Background(), CancelOrderParams{SubaccountID: "1001"})
		assert.Error(t, err)
	})

	t.Run("Cancel by client ID requires IDs", func(t *testing.T) {
		_, err := client.CancelOrderByClientID(context.Background(), CancelOrderByClientIDParams{SubaccountID: "1001"})
		assert.Error(t, err)
	})

	t.Run("Cancel by client ID submits under its own type URL", func(t *testing.T) {
		_, err := client.CancelOrderByClientID(context.Background(), CancelOrderByClientIDParams{
			SubaccountID:   "1001",
			ClientOrderIDs: []string{"mine"},
		})
		require.NoError(t, err)
		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, MsgCancelOrderByClientIdTypeURL, sent.TypeURL)
	})

	t.Run("Cancel all submits under its own type URL", func(t *testing.T) {
		_, err := client.CancelAllOrders(context.Background(), CancelAllOrdersParams{SubaccountID: "1001"})
		require.NoError(t, err)
		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, MsgCancelAllOrderTypeURL, sent.TypeURL)
	})

	t.Run("Close all positions submits under its own type URL", func(t *testing.T) {
		_, err := client.CloseAllPositions(context.Background(), CloseAllPositionsParams{SubaccountID: "1001"})
		require.NoError(t, err)
		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, MsgCloseAllPositionTypeURL, sent.TypeURL)

		_, err = client.CloseAllPositions(context.Background(), CloseAllPositionsParams{})
		assert.Error(t, err, "subaccount is required")
	})
}

func TestClientBindAgent(t *testing.T) {
	stub := newGatewayStub(t)
	client := newTestClient(t, stub)

	t.Run("Rejects non-positive ttl", func(t *testing.T) {
		_, err := client.BindAgent(context.Background(), testKeyHex, 0)
		assert.Error(t, err)
	})

	t.Run("Submits an ordered MsgBindAgent", func(t *testing.T) {
		txHash, err := client.BindAgent(context.Background(), testKeyHex, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", txHash)

		sent := stub.lastSubmit.Load()
		require.NotNil(t, sent)
		assert.Equal(t, MsgBindAgentTypeURL, sent.TypeURL)

		rawTx, err := base64.StdEncoding.DecodeString(sent.RawTx)
		require.NoError(t, err)
		fields := scanFields(t, rawTx)
		unordered, timeoutNs := scanBodyReplayFields(t, fields[0].bytes)
		assert.False(t, unordered)
		assert.Zero(t, timeoutNs)

		// The envelope carries a verifiable owner signature.
		var env, bindMsg []wireField
		env = scanFields(t, fields[0].bytes)
		for _, f := range env {
			if f.num == 1 {
				inner := scanFields(t, f.bytes)
				assert.Equal(t, MsgBindAgentTypeURL, stringField(inner, 1))
				bindMsg = scanFields(t, inner[1].bytes)
			}
		}
		require.NotNil(t, bindMsg)

		message := BindAgentMessage(
			client.Address(),
			int64(varintField(bindMsg, 4)),
			int64(varintField(bindMsg, 5)),
			"orbex-devnet",
		)
		assert.True(t, sign.VerifyPersonal(stringField(bindMsg, 3), message, stringField(bindMsg, 6)))
	})
}

func TestNewClient(t *testing.T) {
	t.Run("Invalid config", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.Error(t, err)
	})

	t.Run("Invalid private key", func(t *testing.T) {
		_, err := NewClient(Config{
			GatewayURL:    "http://localhost:8080",
			ChainID:       "orbex-devnet",
			PrivateKeyHex: "zz",
			AccountHRP:    AccountHRP,
		})
		assert.Error(t, err)
	})

	t.Run("Address derivation failure surfaces", func(t *testing.T) {
		// A prefix with a space survives config validation but is not a
		// legal bech32 prefix, so the session cannot derive an address.
		// The parsed key must not leak past this failure.
		_, err := NewClient(Config{
			GatewayURL:    "http://localhost:8080",
			ChainID:       "orbex-devnet",
			PrivateKeyHex: testKeyHex,
			AccountHRP:    "or b",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, bech32.ErrInvalidCharacter)
	})

	t.Run("SignAndSubmit after close fails", func(t *testing.T) {
		stub := newGatewayStub(t)
		client := newTestClient(t, stub)
		require.NoError(t, client.Close())

		_, err := client.SignAndSubmit(context.Background(), "/x.Msg", []byte{0x01}, SignOptions{Unordered: true})
		assert.ErrorIs(t, err, ErrSessionClosed)
	})
}
