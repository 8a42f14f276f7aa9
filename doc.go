// Package orbex is the Go client SDK for the Orbex trading venue.
//
// The SDK derives an agent identity from a secp256k1 private key, encodes it
// as a checksummed bech32 address, and submits signed operations to the
// venue gateway. Transaction assembly, address derivation, and signing live
// in the pkg subpackages; this package ties them together into a Client
// holding a SigningSession and the gateway transport.
//
// A minimal session:
//
//	cfg, err := orbex.LoadConfigFromEnv()
//	if err != nil {
//	    // ...
//	}
//	client, err := orbex.NewClient(cfg)
//	if err != nil {
//	    // ...
//	}
//	defer client.Close()
//
//	txHash, clientOrderID, err := client.CreateOrder(ctx, orbex.CreateOrderParams{
//	    SubaccountID: "1001",
//	    ExchangeID:   "BTC-USDT",
//	    IsBuy:        true,
//	    PriceValue:   "65000",
//	    SizeValue:    "0.5",
//	})
package orbex
