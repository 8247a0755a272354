package vm

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto/bn256"
)

// bn256Add/ScalarMul/Pairing (addresses 0x06-0x08, EIP-196/197, repriced by
// EIP-1108) are grounded directly on go-ethereum's own bn256 package, the
// same curve implementation the wider Go Ethereum client ecosystem
// standardized on (itself a fork of the Cloudflare bn256 library) rather
// than reimplementing pairing-friendly curve arithmetic from scratch.

func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}
	return p, nil
}

func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}
	return p, nil
}

type bn256AddContract struct{ gas uint64 }

func (c *bn256AddContract) RequiredGas(input []byte) uint64 { return c.gas }

func (c *bn256AddContract) Run(input []byte) ([]byte, error) {
	x, err := newCurvePoint(getDataSlice(input, 0, 64))
	if err != nil {
		return nil, err
	}
	y, err := newCurvePoint(getDataSlice(input, 64, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.Add(x, y)
	return res.Marshal(), nil
}

type bn256ScalarMulContract struct{ gas uint64 }

func (c *bn256ScalarMulContract) RequiredGas(input []byte) uint64 { return c.gas }

func (c *bn256ScalarMulContract) Run(input []byte) ([]byte, error) {
	p, err := newCurvePoint(getDataSlice(input, 0, 64))
	if err != nil {
		return nil, err
	}
	scalar := wordFromBytes(getDataSlice(input, 64, 32))
	res := new(bn256.G1)
	res.ScalarMult(p, scalar.ToBig())
	return res.Marshal(), nil
}

var (
	bnTrue32  = append(make([]byte, 31), 1)
	bnFalse32 = make([]byte, 32)

	errBadPairingInput = errors.New("bn256: invalid pairing input length")
)

type bn256PairingContract struct {
	baseGas     uint64
	perPointGas uint64
}

func (c *bn256PairingContract) RequiredGas(input []byte) uint64 {
	return c.baseGas + uint64(len(input)/192)*c.perPointGas
}

func (c *bn256PairingContract) Run(input []byte) ([]byte, error) {
	if len(input)%192 != 0 {
		return nil, errBadPairingInput
	}
	var (
		g1s []*bn256.G1
		g2s []*bn256.G2
	)
	for i := 0; i < len(input); i += 192 {
		g1, err := newCurvePoint(input[i : i+64])
		if err != nil {
			return nil, err
		}
		g2, err := newTwistPoint(input[i+64 : i+192])
		if err != nil {
			return nil, err
		}
		g1s = append(g1s, g1)
		g2s = append(g2s, g2)
	}
	if bn256.PairingCheck(g1s, g2s) {
		return bnTrue32, nil
	}
	return bnFalse32, nil
}
