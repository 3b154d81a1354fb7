package xio

// WaitAllFutures suspends the calling task until every future in fs is
// done, then returns their values in the same order. The futures are
// awaited one at a time in slice order, and the first failure met is
// returned without waiting on the futures after it; a failed future is not
// reported until every future before it in fs is done.
func WaitAllFutures[T any](ctx *Ctx, fs []*Future[T]) ([]T, error) {
	results := make([]T, len(fs))
	for i, f := range fs {
		v, err := Await(ctx, f)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// WaitAnyFuture suspends until at least one future in fs is done, then
// returns the index and value of the first one found done, or its failure.
// Ties (multiple futures already done when WaitAnyFuture is called) resolve
// to the lowest index.
func WaitAnyFuture[T any](ctx *Ctx, fs []*Future[T]) (int, T, error) {
	for {
		for i, f := range fs {
			if f.Done() {
				v, err := f.result()
				return i, v, err
			}
		}
		cond := Condition{}
		for _, f := range fs {
			cond.Futures = append(cond.Futures, f)
		}
		if _, err := ctx.suspend(cond); err != nil {
			var zero T
			return -1, zero, err
		}
	}
}
