package transform

// Result contains metrics about a marginalization.
//
// Result is returned by [MarginalizeWithOptions] to provide visibility into
// how much the graph was reduced. This is useful for logging and for
// reasoning about how distinguishing the retained strains are.
type Result struct {
	// Strains is the number of retained strains.
	Strains int

	// BlocksTouched is the number of input blocks visited by at least one
	// retained strain.
	BlocksTouched int

	// BlocksDropped is the number of input blocks no retained strain visits.
	BlocksDropped int

	// BlocksOut is the number of blocks in the marginalized graph. It never
	// exceeds BlocksTouched.
	BlocksOut int

	// ChainsMerged is the number of merged blocks created from two or more
	// input blocks.
	ChainsMerged int

	// JunctionsMerged is the number of block boundaries removed.
	JunctionsMerged int

	// SingleStrain reports that exactly one strain was retained and its
	// genome collapsed into a single block.
	SingleStrain bool
}

// Options configures [MarginalizeWithOptions].
//
// The zero value uses one worker per available CPU.
type Options struct {
	// Workers bounds the number of chains contracted concurrently. Zero or
	// negative means runtime.GOMAXPROCS(0). The output is identical for
	// every value.
	Workers int
}
