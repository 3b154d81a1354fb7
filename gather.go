package xio

// Gather runs every fn concurrently inside its own [TaskGroup] scope and
// returns their results in input order (spec §4.6 "gather"). If any fn
// fails, every other one is cancelled and unwound before the first failure
// is returned; if the scope itself is interrupted from outside, that
// failure is returned instead.
func Gather[T any](ctx *Ctx, fns ...func(ctx *Ctx) (T, error)) ([]T, error) {
	handles := make([]*Task[T], len(fns))
	_, err := WithGroup(ctx, func(_ *Ctx, g *TaskGroup) (struct{}, error) {
		for i, fn := range fns {
			handles[i] = AddTask(g, fn)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]T, len(handles))
	for i, h := range handles {
		v, _ := h.Result()
		out[i] = v
	}
	return out, nil
}
