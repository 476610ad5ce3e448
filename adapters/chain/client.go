package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultPollInterval is how often the receipt watcher polls the node.
const DefaultPollInterval = 2 * time.Second

// Contracts holds the deployed contract addresses and the attestation schema.
type Contracts struct {
	BadgeRegistry       string
	EAS                 string
	AttestationResolver string
	ActivityToken       string
	SchemaID            string
}

// Client talks to the chain RPC node. It implements both the write pipeline
// (simulate, submit, wait) and the read-aggregation surface.
type Client struct {
	rpc    *ethclient.Client
	signer ports.Signer
	log    zerolog.Logger

	chainID  *big.Int
	registry common.Address
	eas      common.Address
	resolver common.Address
	token    common.Address
	schema   [32]byte

	poll time.Duration
}

// Dial connects to the RPC endpoint and resolves the chain id. The signer may
// be nil for read-only use.
func Dial(ctx context.Context, rpcURL string, signer ports.Signer, contracts Contracts, log zerolog.Logger) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", core.ErrNetwork, rpcURL, err)
	}

	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id: %v", core.ErrNetwork, err)
	}

	return &Client{
		rpc:      rpc,
		signer:   signer,
		log:      log,
		chainID:  chainID,
		registry: common.HexToAddress(contracts.BadgeRegistry),
		eas:      common.HexToAddress(contracts.EAS),
		resolver: common.HexToAddress(contracts.AttestationResolver),
		token:    common.HexToAddress(contracts.ActivityToken),
		schema:   common.HexToHash(contracts.SchemaID),
		poll:     DefaultPollInterval,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// CreateBadgeCall encodes a createBadge(bytes32,bytes32) call.
func (c *Client) CreateBadgeCall(name, description string) (string, []byte, error) {
	nameWord, err := StringToBytes32(name)
	if err != nil {
		return "", nil, err
	}
	descWord, err := StringToBytes32(description)
	if err != nil {
		return "", nil, err
	}

	data, err := badgeRegistryABI.Pack("createBadge", nameWord, descWord)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode createBadge: %w", err)
	}
	return c.registry.Hex(), data, nil
}

// AttestCall encodes an EAS attest call carrying the badge payload.
func (c *Client) AttestCall(recipient, badgeName, justification string) (string, []byte, error) {
	if !common.IsHexAddress(recipient) {
		return "", nil, fmt.Errorf("%w: %q", core.ErrInvalidAddress, recipient)
	}

	payload, err := EncodeBadgeData(badgeName, justification)
	if err != nil {
		return "", nil, err
	}

	req := attestationRequest{
		Schema: c.schema,
		Data: attestationRequestData{
			Recipient:      common.HexToAddress(recipient),
			ExpirationTime: 0,
			Revocable:      true,
			Data:           payload,
			Value:          big.NewInt(0),
		},
	}

	data, err := easABI.Pack("attest", req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode attest: %w", err)
	}
	return c.eas.Hex(), data, nil
}

// Simulate dry-runs the call with the connected account and prepares gas
// parameters from the node's current view.
func (c *Client) Simulate(ctx context.Context, to string, data []byte, value *big.Int) (*ports.PreparedCall, error) {
	if c.signer == nil {
		return nil, core.ErrNoWallet
	}

	from := common.HexToAddress(c.signer.Address())
	target := common.HexToAddress(to)
	msg := ethereum.CallMsg{From: from, To: &target, Data: data, Value: value}

	if _, err := c.rpc.CallContract(ctx, msg, nil); err != nil {
		return nil, classifyCallError(err)
	}

	gas, err := c.rpc.EstimateGas(ctx, msg)
	if err != nil {
		return nil, classifyCallError(err)
	}

	tip, err := c.rpc.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas tip: %v", core.ErrNetwork, err)
	}

	head, err := c.rpc.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: head: %v", core.ErrNetwork, err)
	}

	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	return &ports.PreparedCall{
		To:        to,
		Data:      data,
		Value:     value,
		GasLimit:  gas,
		GasFeeCap: feeCap,
		GasTipCap: tip,
	}, nil
}

// Submit requests wallet signature and broadcasts the transaction.
func (c *Client) Submit(ctx context.Context, call *ports.PreparedCall) (string, error) {
	if c.signer == nil {
		return "", core.ErrNoWallet
	}

	from := common.HexToAddress(c.signer.Address())
	nonce, err := c.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", core.ErrNetwork, err)
	}

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	target := common.HexToAddress(call.To)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: call.GasTipCap,
		GasFeeCap: call.GasFeeCap,
		Gas:       call.GasLimit,
		To:        &target,
		Value:     value,
		Data:      call.Data,
	})

	signed, err := c.signer.SignTx(ctx, tx, c.chainID)
	if err != nil {
		return "", err
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return "", classifyCallError(err)
	}

	hash := signed.Hash().Hex()
	c.log.Info().Str("tx", hash).Uint64("nonce", nonce).Msg("transaction broadcast")
	return hash, nil
}

// WaitForReceipt polls until the transaction reaches the requested depth.
// Inclusion counts as the first confirmation.
func (c *Client) WaitForReceipt(ctx context.Context, txHash string, confirmations uint64) error {
	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		receipt, err := c.rpc.TransactionReceipt(ctx, hash)
		switch {
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet.
		case err != nil:
			return fmt.Errorf("%w: receipt: %v", core.ErrNetwork, err)
		case receipt.Status == types.ReceiptStatusFailed:
			return &core.RevertError{Raw: fmt.Sprintf("transaction %s reverted on-chain", txHash)}
		default:
			height, err := c.rpc.BlockNumber(ctx)
			if err != nil {
				return fmt.Errorf("%w: height: %v", core.ErrNetwork, err)
			}
			if height+1 >= receipt.BlockNumber.Uint64()+confirmations {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TotalBadges returns the badge registry size.
func (c *Client) TotalBadges(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, c.registry, badgeRegistryABI, "totalBadges")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Uint64(), nil
}

// BadgeAt returns the badge at the given registry index.
func (c *Client) BadgeAt(ctx context.Context, index uint64) (core.Badge, error) {
	out, err := c.call(ctx, c.registry, badgeRegistryABI, "getBadgeAt", new(big.Int).SetUint64(index))
	if err != nil {
		return core.Badge{}, err
	}
	return core.Badge{
		Name:        Bytes32ToString(out[0].([32]byte)),
		Description: Bytes32ToString(out[1].([32]byte)),
		Creator:     out[2].(common.Address).Hex(),
	}, nil
}

// AttestationCount returns the number of stored attestations.
func (c *Client) AttestationCount(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, c.resolver, resolverABI, "getAttestationCount")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Uint64(), nil
}

// AttestationAt returns the attestation at the given index. Payloads that do
// not match the badge schema decode to empty fields rather than an error.
func (c *Client) AttestationAt(ctx context.Context, index uint64) (core.Attestation, error) {
	out, err := c.call(ctx, c.resolver, resolverABI, "getAttestationAtIndex", new(big.Int).SetUint64(index))
	if err != nil {
		return core.Attestation{}, err
	}

	record := *abi.ConvertType(out[0], new(attestationRecord)).(*attestationRecord)

	badgeName, justification, err := DecodeBadgeData(record.Data)
	if err != nil {
		c.log.Debug().Err(err).Uint64("index", index).Msg("undecodable attestation payload")
		badgeName, justification = "", ""
	}

	return core.Attestation{
		UID:           hexutil.Encode(record.Uid[:]),
		Issuer:        record.Attester.Hex(),
		Recipient:     record.Recipient.Hex(),
		BadgeName:     badgeName,
		Justification: justification,
		Revocable:     record.Revocable,
	}, nil
}

// TokenBalance returns the activity-token balance scaled by the token's
// decimals.
func (c *Client) TokenBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if !common.IsHexAddress(address) {
		return decimal.Zero, fmt.Errorf("%w: %q", core.ErrInvalidAddress, address)
	}

	out, err := c.call(ctx, c.token, erc20ABI, "balanceOf", common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, err
	}
	balance := out[0].(*big.Int)

	out, err = c.call(ctx, c.token, erc20ABI, "decimals")
	if err != nil {
		return decimal.Zero, err
	}
	decimals := out[0].(uint8)

	return decimal.NewFromBigInt(balance, -int32(decimals)), nil
}

func (c *Client) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	out, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, classifyCallError(err)
	}

	values, err := parsed.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return values, nil
}

// dataError is the shape of JSON-RPC errors that carry revert data.
type dataError interface {
	ErrorData() interface{}
}

// classifyCallError maps node errors to the component error taxonomy: decoded
// revert reasons and opaque revert phrasing become *core.RevertError, anything
// else is a transport failure.
func classifyCallError(err error) error {
	var de dataError
	if errors.As(err, &de) {
		if encoded, ok := de.ErrorData().(string); ok {
			if raw, decodeErr := hexutil.Decode(encoded); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return &core.RevertError{Reason: reason, Raw: err.Error()}
				}
			}
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "revert") || strings.Contains(msg, "internal json-rpc error") {
		return &core.RevertError{Raw: err.Error()}
	}
	return fmt.Errorf("%w: %v", core.ErrNetwork, err)
}

var (
	_ ports.ChainWriter = (*Client)(nil)
	_ ports.ChainReader = (*Client)(nil)
	_ ports.CallBuilder = (*Client)(nil)
)
