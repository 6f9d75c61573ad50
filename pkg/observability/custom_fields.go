package observability

// FieldPID is the field value type for process ID
type FieldPID int

// FieldUID is the field value type for user ID
type FieldUID int

// FieldHostname is the field value type for hostname
type FieldHostname string

// FieldProgram is the field value type for the name of the executable
type FieldProgram string

// FieldSubmissionKey is the field value type for the key of the
// submission being processed.
type FieldSubmissionKey string
