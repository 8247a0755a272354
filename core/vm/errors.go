package vm

import "errors"

// Sentinel errors for exceptional halts and reverts (spec §4.7). Checked
// with errors.Is on every step of the interpreter loop, so these stay plain
// errors.New values rather than cockroachdb/errors-wrapped ones; the richer
// wrapping is reserved for the host/CLI boundary where a stack trace helps
// an operator, not for the hot path.
var (
	ErrOutOfGas                = errors.New("out of gas")
	ErrStackOverflow           = errors.New("stack overflow")
	ErrStackUnderflow          = errors.New("stack underflow")
	ErrInvalidJump             = errors.New("invalid jump destination")
	ErrWriteProtection         = errors.New("write protection")
	ErrExecutionReverted       = errors.New("execution reverted")
	ErrMaxCallDepthExceeded    = errors.New("max call depth exceeded")
	ErrInvalidOpCode           = errors.New("invalid opcode")
	ErrReturnDataOutOfBounds   = errors.New("return data out of bounds")
	ErrMaxInitCodeSizeExceeded = errors.New("max initcode size exceeded")
	ErrMaxCodeSizeExceeded     = errors.New("max code size exceeded")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrInsufficientBalance     = errors.New("insufficient balance for transfer")
	ErrNoStateDB               = errors.New("no state database")
	ErrDepthLimit              = errors.New("call depth limit reached")
	ErrGasUintOverflow         = errors.New("gas uint64 overflow")

	// EOF-specific validation errors (spec §4.8 / supplemented EOF container
	// validation, grounded on the teacher's eof.go).
	ErrInvalidEOFMagic       = errors.New("eof: invalid magic")
	ErrInvalidEOFVersion     = errors.New("eof: invalid version")
	ErrInvalidEOFContainer   = errors.New("eof: malformed container")
	ErrEOFStackValidation    = errors.New("eof: stack height validation failed")
	ErrEOFInvalidSectionRef  = errors.New("eof: invalid section reference")
	ErrEOFTruncatedImmediate = errors.New("eof: truncated immediate")
	ErrEOFUnreachableCode    = errors.New("eof: unreachable code")
)

// errStopToken and errJumpHandled are internal control-flow signals used
// between an opcode handler and the interpreter's run loop; neither is ever
// surfaced to a caller of Call/Create. errStopToken marks a clean halt
// (STOP/RETURN); errJumpHandled tells the loop that pc was already updated
// by the handler (JUMP/JUMPI) and should not be incremented again.
var (
	errStopToken   = errors.New("stop token")
	errJumpHandled = errors.New("jump handled")
)
