package orbex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orbexchain/orbex-go/pkg/keys"
	"github.com/orbexchain/orbex-go/pkg/sign"
)

// chainTypeEVM is the only owning-chain type the venue currently accepts.
const chainTypeEVM = 1

// BindAgentMessage is the exact text the owning key signs to authorize an
// agent. Times are milliseconds since the epoch. Verifiers rebuild this text
// from the on-chain message fields, so the format is part of the protocol.
func BindAgentMessage(agentAddress string, createTime, expireTime int64, chainID string) string {
	return fmt.Sprintf("Action:BindAgent\nAgentAddress:%s\nCreateTime:%d\nExpireTime:%d\nChainId:%s",
		agentAddress, createTime, expireTime, chainID)
}

// SignAgentBinding produces the owning key's authorization proof for an
// agent: the canonical binding text and its personal-message signature.
func SignAgentBinding(ownerKey *keys.PrivateKey, agentAddress, chainID string, createTime, expireTime int64) (message, sigHex string, err error) {
	message = BindAgentMessage(agentAddress, createTime, expireTime, chainID)
	sigHex, err = sign.PersonalSign(message, ownerKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign agent binding: %w", err)
	}
	return message, sigHex, nil
}

// BindAgent authorizes this client's agent key to act for the account owned
// by ownerKeyHex. The owning key signs the binding text off-chain with the
// personal-message scheme; the proof then rides an ordered MsgBindAgent
// transaction signed by the agent key. The owning key is wiped before
// returning.
//
// ttl bounds how long the binding is valid.
func (c *Client) BindAgent(ctx context.Context, ownerKeyHex string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("binding ttl must be positive")
	}
	ownerKey, err := keys.NewPrivateKeyFromHex(ownerKeyHex)
	if err != nil {
		return "", fmt.Errorf("failed to parse owner key: %w", err)
	}
	defer ownerKey.Zero()

	now := time.Now()
	createTime := now.UnixMilli()
	expireTime := now.Add(ttl).UnixMilli()

	_, sigHex, err := SignAgentBinding(ownerKey, c.Address(), c.cfg.ChainID, createTime, expireTime)
	if err != nil {
		return "", err
	}

	payload := marshalBindAgent(c.Address(), sign.PersonalAddress(ownerKey), sigHex, createTime, expireTime)
	return c.SignAndSubmit(ctx, MsgBindAgentTypeURL, payload, SignOptions{})
}

// MsgBindAgent wire form: agent address, owning chain type and address, the
// binding validity window, and the owner's signature over the binding text.
func marshalBindAgent(agentAddress, ownerAddress, sigHex string, createTime, expireTime int64) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, agentAddress)
	buf = appendVarintField(buf, 2, chainTypeEVM)
	buf = appendStringField(buf, 3, ownerAddress)
	buf = appendVarintField(buf, 4, uint64(createTime))
	buf = appendVarintField(buf, 5, uint64(expireTime))
	buf = appendStringField(buf, 6, sigHex)
	return buf
}
