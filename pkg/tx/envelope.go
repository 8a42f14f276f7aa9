package tx

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope pairs an opaque, already-encoded operation payload with an
// explicitly declared type URL. The stored type URL is always the declared
// one: whatever type metadata the payload's own encoding may imply is
// ignored. The venue gateway routes transactions by this URL, and some
// payloads are produced by code generators that stamp a different package
// path into their metadata, so the override is load-bearing.
type Envelope struct {
	// TypeURL is the declared type identifier, e.g. "/orbex.order.MsgCreateOrder".
	TypeURL string
	// Value is the encoded operation payload. The SDK never interprets it.
	Value []byte
}

// Wrap builds an Envelope for value under the declared type URL.
func Wrap(value []byte, typeURL string) Envelope {
	return Envelope{TypeURL: typeURL, Value: value}
}

// Marshal encodes the envelope as a protobuf Any.
func (e Envelope) Marshal() []byte {
	var buf []byte
	if e.TypeURL != "" {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendString(buf, e.TypeURL)
	}
	if len(e.Value) > 0 {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Value)
	}
	return buf
}
