package metrics

import "expvar"

var (
	SnapshotSaves  = expvar.NewInt("sizing_snapshot_saves")
	SnapshotLoads  = expvar.NewInt("sizing_snapshot_loads")
	SnapshotErrors = expvar.NewInt("sizing_snapshot_errors")
	CyclesAdvanced = expvar.NewInt("sizing_cycles_advanced")
	TradesRecorded = expvar.NewInt("sizing_trades_recorded")
)
