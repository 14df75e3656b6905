package osb

// Status is the terminal state of one object in a change workflow. Every
// processed object ends in exactly one status; nothing is silently dropped.
type Status string

const (
	StatusDeleted      Status = "Deleted"
	StatusSkipped      Status = "Skipped"
	StatusFailed       Status = "Failed"
	StatusNotFound     Status = "Not found"
	StatusProjectEmpty Status = "Project is empty"
)

// Object type labels used in outcome reports.
const (
	ObjectProject              = "OSB project"
	ObjectWorkManager          = "Work manager"
	ObjectMaxThreadsConstraint = "MaxThreadsConstraint"
	ObjectMinThreadsConstraint = "MinThreadsConstraint"
	ObjectQueue                = "Queue"
	ObjectDistributedQueue     = "UniformDistributedQueue"
	ObjectForeignDestination   = "ForeignDestination"
	ObjectDMQ                  = "DMQ"
)

// Outcome is one row of a change report.
type Outcome struct {
	ObjectType string
	Name       string
	Status     Status
}

// Row renders the outcome as report cells.
func (o Outcome) Row() []any {
	return []any{o.ObjectType, o.Name, string(o.Status)}
}
