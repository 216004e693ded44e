package wiki

// Status is the lookup outcome for one roster name.
type Status string

const (
	StatusAlive             Status = "alive"
	StatusDead              Status = "dead"
	StatusMissingOrRedirect Status = "missing_or_redirect"
	StatusUnresolved        Status = "unresolved"
)

// PageResult is a single page as returned by the MediaWiki API. Title is the
// roster name that requested the page, not the API's normalized title.
type PageResult struct {
	Title   string
	Missing bool
	Invalid bool
	Content string
}

// LookupResult partitions the names sent to one language edition. Every
// requested name lands in exactly one of the three lists, in request order.
type LookupResult struct {
	Dead              []string
	Alive             []string
	MissingOrRedirect []string
}

// Subject records where a name was last resolved during a cascade.
type Subject struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Language string `json:"language,omitempty"`
}

// PassSummary describes one language pass of a cascade.
type PassSummary struct {
	Language string `json:"language"`
	Queried  int    `json:"queried"`
	Dead     int    `json:"dead"`
	Alive    int    `json:"alive"`
	Missing  int    `json:"missing"`
}

// Detection is the outcome of a full cascade. Dead and Unresolved keep the
// order names were submitted in.
type Detection struct {
	Dead       []string      `json:"dead"`
	Unresolved []string      `json:"unresolved"`
	Subjects   []Subject     `json:"subjects"`
	Passes     []PassSummary `json:"passes"`
}

// IsDead reports whether name was detected dead.
func (d Detection) IsDead(name string) bool {
	for _, dead := range d.Dead {
		if dead == name {
			return true
		}
	}
	return false
}
