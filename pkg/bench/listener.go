package bench

// Receives the arena progress. Every worker gets its own clone, the callbacks
// of a single clone are never called concurrently.
type ListenerLike[M any] interface {
	// Row of the worker this clone belongs to
	SetRow(row int)
	Clone() ListenerLike[M]

	OnStart()
	OnGameStart()
	OnMoveMade(info VersusWorkerInfo[M])
	OnFinishedGame(info VersusWorkerInfo[M])
	OnFinishedWork(info VersusWorkerInfo[M])
	// Called once, after every worker finished
	Summary(info VersusSummaryInfo)
	OnEnd()
}

// Ignores everything
type DefaultListener[M any] struct {
	row int
}

func (d *DefaultListener[M]) SetRow(row int) {
	d.row = row
}

func (d *DefaultListener[M]) Clone() ListenerLike[M] {
	return &DefaultListener[M]{row: d.row}
}

func (d *DefaultListener[M]) OnStart()                                {}
func (d *DefaultListener[M]) OnGameStart()                            {}
func (d *DefaultListener[M]) OnMoveMade(info VersusWorkerInfo[M])     {}
func (d *DefaultListener[M]) OnFinishedGame(info VersusWorkerInfo[M]) {}
func (d *DefaultListener[M]) OnFinishedWork(info VersusWorkerInfo[M]) {}
func (d *DefaultListener[M]) Summary(info VersusSummaryInfo)          {}
func (d *DefaultListener[M]) OnEnd()                                  {}
