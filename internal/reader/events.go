package reader

// LoadEvent is the payload published for registration pass notifications.
// Which fields are set depends on the event type: PassStarted carries only
// the pass ID, ImportProcessed adds Location and Imported, AliasRegistered
// adds Name and Alias, ComponentRegistered adds Name, PassCompleted adds
// Count and Problems.
type LoadEvent struct {
	PassID   string
	Resource string
	Location string
	Imported []string
	Name     string
	Alias    string
	Count    int
	Problems int
}
