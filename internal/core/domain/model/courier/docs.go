// Package courier contains the Courier aggregate: the delivery riders that
// pick up ready orders.
//
// A courier is eligible for dispatch offers while online and free. Position
// heartbeats keep the courier in the pool; accepting an order marks them busy
// until the delivery completes or the assignment falls through.
package courier
