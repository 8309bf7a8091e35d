// Package queue assembles the bounded multi-lane work queue: per-lane
// ring buffers with an overflow policy, watermark backpressure with
// hysteresis, a fair round-robin scheduler, optional CEL admission
// filtering, optional dead-lettering of dropped payloads, and a shared
// cooperative shutdown token.
//
// Producers call Enqueue against a lane index; consumers call DequeueNext
// to receive items fairly across lanes. Neither side ever loses an
// accepted item: after RequestShutdown the queue drains before reporting
// shutdown to consumers.
package queue
