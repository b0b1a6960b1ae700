package chain

import (
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/Somtiee/swaparc/internal/domain/model"
)

const poolABIJSON = `[
	{"type":"function","name":"swap","stateMutability":"nonpayable","inputs":[{"name":"i","type":"uint256"},{"name":"j","type":"uint256"},{"name":"dx","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"get_dy","stateMutability":"view","inputs":[{"name":"i","type":"uint256"},{"name":"j","type":"uint256"},{"name":"dx","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var poolABI = mustParseABI(poolABIJSON)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}

// DecodeSwap attempts to decode call data as the pool's swap(i, j, dx)
// function. Non-swap input is an expected, frequent case: the second return
// is false and nothing is logged.
func DecodeSwap(input []byte) (model.SwapCall, bool) {
	if len(input) < 4 {
		return model.SwapCall{}, false
	}

	method, err := poolABI.MethodById(input[:4])
	if err != nil || method.Name != "swap" {
		return model.SwapCall{}, false
	}

	// all three args are static uint256, so the payload length is fixed
	if len(input) != 4+3*32 {
		return model.SwapCall{}, false
	}

	args, err := method.Inputs.Unpack(input[4:])
	if err != nil || len(args) != 3 {
		return model.SwapCall{}, false
	}

	i, ok := toTokenIndex(args[0])
	if !ok {
		return model.SwapCall{}, false
	}
	j, ok := toTokenIndex(args[1])
	if !ok {
		return model.SwapCall{}, false
	}
	dx, ok := args[2].(*big.Int)
	if !ok || dx == nil || dx.Sign() < 0 {
		return model.SwapCall{}, false
	}

	return model.SwapCall{TokenInIndex: i, TokenOutIndex: j, AmountIn: dx}, true
}

// PackSwap encodes a swap(i, j, dx) call, selector included.
func PackSwap(i, j int, dx *big.Int) ([]byte, error) {
	return poolABI.Pack("swap", big.NewInt(int64(i)), big.NewInt(int64(j)), dx)
}

func toTokenIndex(arg interface{}) (int, bool) {
	v, ok := arg.(*big.Int)
	if !ok || v == nil || !v.IsInt64() {
		return 0, false
	}
	n := v.Int64()
	if n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
