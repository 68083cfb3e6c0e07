//go:build linux

package netx

// WriteTask is a queued record holding the still-unsent suffix of a write
// plus a cursor into it and an optional completion callback.
//
// A task is created when a single send(2) cannot absorb the whole buffer
// and destroyed once its cursor reaches the end and its callback (if any)
// has fired.
type WriteTask struct {
	data     []byte
	written  int
	callback func()
}

// newWriteTask owns only the still-unsent suffix of data (data[written:]);
// bytes already accepted by the kernel are never copied or retained.
func newWriteTask(data []byte, written int, cb func()) *WriteTask {
	owned := make([]byte, len(data)-written)
	copy(owned, data[written:])
	return &WriteTask{data: owned, callback: cb}
}

func (t *WriteTask) remaining() []byte {
	return t.data[t.written:]
}

func (t *WriteTask) done() bool {
	return t.written >= len(t.data)
}

func (t *WriteTask) fire() {
	if t.callback != nil {
		t.callback()
	}
}
