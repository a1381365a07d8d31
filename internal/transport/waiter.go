package transport

// Waiter bridges channel readiness events onto a run loop. It is the
// adapter between "notify me when this handle is readable" and the
// loop's cooperative scheduling.
type Waiter struct {
	loop *Loop
}

func NewWaiter(loop *Loop) *Waiter {
	return &Waiter{loop: loop}
}

// Await invokes cont on the loop once ch becomes ready in dir. A wait
// cancelled by teardown (channel close or loop stop) is absorbed
// silently: cancellation is the expected shutdown signal, not a
// protocol failure, and cont must never fire after it.
func (w *Waiter) Await(ch Channel, dir Direction, cont func()) {
	ch.Await(dir, func(err error) {
		if err != nil {
			return
		}
		w.loop.Post(cont)
	})
}
