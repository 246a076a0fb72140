package pool

import (
	"context"
	"fmt"
	"sync"
)

// Result is the outcome of one task. Index is the task's position in the input.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

type job[In any] struct {
	index int
	input In
}

// Map runs fn over inputs on at most workers goroutines and returns one Result
// per input, in input order. A panic inside fn is recovered into that task's Err.
// Tasks not started before ctx is cancelled carry ctx.Err().
func Map[In, Out any](ctx context.Context, workers int, inputs []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	results := make([]Result[Out], len(inputs))
	if len(inputs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var wg sync.WaitGroup
	jobs := make(chan job[In], len(inputs))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = run(ctx, j, fn)
			}
		}()
	}

	for i, in := range inputs {
		jobs <- job[In]{index: i, input: in}
	}
	close(jobs)

	wg.Wait()

	return results
}

func run[In, Out any](ctx context.Context, j job[In], fn func(context.Context, In) (Out, error)) (res Result[Out]) {
	res.Index = j.index

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %d panicked: %v", j.index, r)
		}
	}()

	res.Value, res.Err = fn(ctx, j.input)
	return res
}
