package token

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "0x0064164e643f4EfFDdd5E5892C7e4C707908D55f"
	testReceiver = "0x2222222222222222222222222222222222222222"
)

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"1.5", 18, "1500000000000000000"},
		{"0.000000000000000001", 18, "1"},
		{".5", 6, "500000"},
		{"15", 0, "15"},
		{"10.", 2, "1000"},
		{"0", 18, "0"},
		{" 2 ", 1, "20"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ScaleAmount(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestScaleAmountInvalid(t *testing.T) {
	for _, amount := range []string{"", "-1", "+1", ".", "1.2.3", "abc", "1e18", "0.1234567"} {
		t.Run(amount, func(t *testing.T) {
			_, err := ScaleAmount(amount, 6)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestTransferCalldata(t *testing.T) {
	data, err := TransferCalldata(testReceiver, big.NewInt(1))
	require.NoError(t, err)

	require.Len(t, data, 4+32+32)
	assert.Equal(t, "0xa9059cbb", hexutil.Encode(data[:4]))
	assert.Equal(t, common.HexToAddress(testReceiver).Bytes(), data[4+12:4+32])
	assert.Equal(t, byte(1), data[len(data)-1])
}

func TestTransferCalldataRejectsBadInput(t *testing.T) {
	_, err := TransferCalldata("0x123", big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = TransferCalldata(testReceiver, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTransferRequest(t *testing.T) {
	req, err := TransferRequest(strings.ToLower(testToken), testReceiver, "2", DefaultDecimals)
	require.NoError(t, err)

	assert.Equal(t, testToken, req.To)
	assert.Equal(t, "0x0", req.Value)
	assert.True(t, strings.HasPrefix(req.Data, "0xa9059cbb"))

	units, _ := new(big.Int).SetString("2000000000000000000", 10)
	want, err := TransferCalldata(testReceiver, units)
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(want), req.Data)
}

func TestTransferRequestMissingAddress(t *testing.T) {
	_, err := TransferRequest("", testReceiver, "1", 18)
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = TransferRequest(testToken, "  ", "1", 18)
	assert.ErrorIs(t, err, ErrMissingAddress)
	assert.EqualError(t, err, "contract address or receiver's address is empty")
}

func TestTransferRequestBadAmount(t *testing.T) {
	_, err := TransferRequest(testToken, testReceiver, "lots", 18)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
