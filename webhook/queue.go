package webhook

// newUnbounded bridges an input channel to an output channel through an
// in-memory FIFO so producers never block on the consumer. Once the input is
// closed the buffer is drained to the output and the output is closed.
func newUnbounded[T any]() (chan T, <-chan T) {
	in := make(chan T)
	out := make(chan T)

	go func() {
		defer close(out)
		var buf []T
		for {
			if len(buf) == 0 {
				v, ok := <-in
				if !ok {
					return
				}
				buf = append(buf, v)
			}
			select {
			case v, ok := <-in:
				if !ok {
					for _, v := range buf {
						out <- v
					}
					return
				}
				buf = append(buf, v)
			case out <- buf[0]:
				buf = buf[1:]
			}
		}
	}()

	return in, out
}
