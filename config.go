package bincode

import "math"

// NoLimit disables size accounting.
const NoLimit uint64 = math.MaxUint64

// Config controls encoder/decoder limits
type Config struct {
	// Limit is the maximum number of bytes one Encoder may write or one
	// Decoder may read. Exceeding it yields SizeLimit.
	Limit uint64

	// RejectTrailing makes Unmarshal fail when input remains after the
	// decoded value.
	RejectTrailing bool
}

// DefaultConfig returns a Config with no size limit that allows trailing bytes
func DefaultConfig() Config {
	return Config{
		Limit: NoLimit,
	}
}

// WithLimit returns a new Config with the specified Limit
func (c Config) WithLimit(n uint64) Config {
	c.Limit = n
	return c
}

// WithNoLimit returns a new Config without a size limit
func (c Config) WithNoLimit() Config {
	c.Limit = NoLimit
	return c
}

// WithRejectTrailing returns a new Config with the specified RejectTrailing
func (c Config) WithRejectTrailing(reject bool) Config {
	c.RejectTrailing = reject
	return c
}

// budget tracks bytes charged against a Config.Limit.
type budget struct {
	limit uint64
	used  uint64
}

func newBudget(limit uint64) budget {
	return budget{limit: limit}
}

// remaining returns the number of bytes that may still be charged
func (b *budget) remaining() uint64 {
	return b.limit - b.used
}

// charge accounts for n bytes, failing without side effects if the limit
// would be exceeded.
func (b *budget) charge(n uint64) error {
	if n > b.remaining() {
		return New(SizeLimit{})
	}
	b.used += n
	return nil
}
