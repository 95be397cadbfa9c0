package aggregates

import "strconv"

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate means aggregate write methods open and commit their own transactions.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy defines how aggregate contracts expose reads.
type ReadPolicy string

const ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"

// Contract documents an aggregate's write boundary. Unit is the largest
// subtree a single transaction commits; a failure rolls back at most one Unit.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Unit             string
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// RollbackScope names the scope tag a failed write of ix carries.
func (c Contract) RollbackScope(ix int) string {
	if c.Unit == "" || ix <= 0 {
		return "course"
	}
	return c.Unit + ":" + strconv.Itoa(ix)
}
