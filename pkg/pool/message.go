package pool

// Task is a unit of work handed to the pool. It runs exactly once on
// whichever worker dequeues it.
type Task func()

type messageKind int

const (
	messageJob messageKind = iota
	messageTerminate
)

// message is what travels through the queue: either a job carrying a Task
// or a terminate signal for exactly one worker.
type message struct {
	kind messageKind
	task Task
}

func jobMessage(task Task) message {
	return message{kind: messageJob, task: task}
}

func terminateMessage() message {
	return message{kind: messageTerminate}
}
