// README: Session model and the state graph for the chat flows.
package conversation

import (
	"fmt"
	"strings"

	"placepilot/internal/places"
)

// State is a node in the conversation state machine.
type State string

const (
	StateStart             State = "START"
	StateLocation          State = "LOCATION"
	StateLocationChoice    State = "LOCATION_CHOICE"
	StateQuery             State = "QUERY"
	StateRefine            State = "REFINE"
	StateName              State = "NAME"
	StateCategory          State = "CATEGORY"
	StateAddress           State = "ADDRESS"
	StateCoordinates       State = "COORDINATES"
	StateCoordinatesManual State = "COORDINATES_MANUAL"
	StateContact           State = "CONTACT"
	StateHours             State = "HOURS"
	StateCustomHours       State = "CUSTOM_HOURS"
	StateAttributes        State = "ATTRIBUTES"
	StatePrivatePlace      State = "PRIVATE_PLACE"
	StatePhotos            State = "PHOTOS"
	StateConfirm           State = "CONFIRM"
)

// AllowedTransitions is the edge set of the state graph. Staying in the
// current state (re-prompt) is always allowed and not listed.
var AllowedTransitions = map[State][]State{
	StateStart:             {StateLocation},
	StateLocation:          {StateLocationChoice},
	StateLocationChoice:    {StateQuery, StateName},
	StateQuery:             {StateRefine, StateLocation},
	StateRefine:            {StateQuery, StateRefine},
	StateName:              {StateCategory},
	StateCategory:          {StateAddress},
	StateAddress:           {StateCoordinates},
	StateCoordinates:       {StateContact, StateCoordinatesManual},
	StateCoordinatesManual: {StateContact, StateCoordinates},
	StateContact:           {StateHours},
	StateHours:             {StateAttributes, StateCustomHours},
	StateCustomHours:       {StateAttributes},
	StateAttributes:        {StatePrivatePlace},
	StatePrivatePlace:      {StatePhotos},
	StatePhotos:            {StateConfirm},
	StateConfirm:           {StateLocation},
}

// CanTransition reports whether moving from one state to another follows
// the state graph. Same-state moves are always legal.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the per-chat conversation state. Everything the flows
// accumulate lives here so a store round-trip loses nothing.
type Session struct {
	ID           string               `json:"id"`
	State        State                `json:"state"`
	Location     *places.Location     `json:"location,omitempty"`
	SearchParams places.SearchFilters `json:"search_params"`
	Draft        DraftPlace           `json:"draft_place"`

	// RequestID correlates log lines for the update currently being
	// handled. It is rewritten per update and never persisted.
	RequestID string `json:"-"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, State: StateStart}
}

// DraftPlace accumulates the place-contribution wizard fields.
type DraftPlace struct {
	Name          string   `json:"name,omitempty"`
	CategoryIDs   []string `json:"category_ids,omitempty"`
	CategoryNames []string `json:"category_names,omitempty"`

	Address     string `json:"address,omitempty"`
	Locality    string `json:"locality,omitempty"`
	Region      string `json:"region,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	CountryCode string `json:"country_code,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	// CoordsFromLocation marks coordinates copied from the shared
	// location rather than typed in.
	CoordsFromLocation bool `json:"coords_from_location,omitempty"`

	Tel         string `json:"tel,omitempty"`
	Website     string `json:"website,omitempty"`
	Email       string `json:"email,omitempty"`
	FacebookURL string `json:"facebook_url,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	Twitter     string `json:"twitter,omitempty"`

	Hours      string   `json:"hours,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
	IsPrivate  *bool    `json:"is_private,omitempty"`
	Photos     []string `json:"photos,omitempty"`
}

// Suggestion converts the draft into the submission payload input.
func (d DraftPlace) Suggestion(dryRun bool) places.Suggestion {
	return places.Suggestion{
		Name:        d.Name,
		CategoryIDs: d.CategoryIDs,
		Address:     d.Address,
		Locality:    d.Locality,
		Region:      d.Region,
		Postcode:    d.Postcode,
		CountryCode: d.CountryCode,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		IsPrivate:   d.IsPrivate,
		Tel:         d.Tel,
		Website:     d.Website,
		Email:       d.Email,
		FacebookURL: d.FacebookURL,
		Instagram:   d.Instagram,
		Twitter:     d.Twitter,
		Hours:       d.Hours,
		Attributes:  d.Attributes,
		DryRun:      dryRun,
	}
}

// Summary renders the draft for the confirmation prompt.
func (d DraftPlace) Summary() string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Name", d.Name)
	line("Categories", strings.Join(d.CategoryNames, ", "))
	addr := d.Address
	for _, part := range []string{d.Locality, d.Region, d.Postcode, d.CountryCode} {
		if part != "" {
			if addr != "" {
				addr += ", "
			}
			addr += part
		}
	}
	line("Address", addr)
	if d.Latitude != nil && d.Longitude != nil {
		line("Coordinates", fmt.Sprintf("%g, %g", *d.Latitude, *d.Longitude))
	}
	line("Phone", d.Tel)
	line("Website", d.Website)
	line("Email", d.Email)
	line("Hours", d.Hours)
	line("Attributes", strings.Join(d.Attributes, ", "))
	if d.IsPrivate != nil {
		if *d.IsPrivate {
			line("Private place", "yes")
		} else {
			line("Private place", "no")
		}
	}
	if len(d.Photos) > 0 {
		line("Photos", fmt.Sprintf("%d attached", len(d.Photos)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Event is one inbound chat update, already reduced to what the state
// machine cares about.
type Event struct {
	ChatID    int64
	RequestID string

	Text     string
	Command  string // "start", "cancel", "skip", "done" etc, without the slash
	Location *places.Location
	PhotoID  string
	Callback string // inline-button callback data
}

// Button is one inline-keyboard button.
type Button struct {
	Label string
	Data  string
}

// Message is one outbound chat message with its keyboard, if any.
type Message struct {
	Text string
	HTML bool

	// Keyboard rows for a one-shot reply keyboard. RequestLocation adds
	// a share-location button as the first row.
	Keyboard        []string
	RequestLocation bool
	RemoveKeyboard  bool

	// Inline is a single row of inline buttons.
	Inline []Button
}

// Reply is everything the state machine wants sent back for one event.
type Reply struct {
	Messages []Message
}

func textReply(text string) Reply {
	return Reply{Messages: []Message{{Text: text}}}
}

func (r *Reply) add(m Message) {
	r.Messages = append(r.Messages, m)
}
