package dialog

// Step names the text-input step a chat is waiting on. Steps driven by
// inline-keyboard callbacks (language, city choice, dates, hotel choice)
// do not hold a step: between them the conversation is parked and only a
// callback or a command moves it.
type Step string

const (
	// StepNone parks the conversation; the next move comes from a
	// callback or a command.
	StepNone Step = ""

	StepCity         Step = "city"
	StepHotelCount   Step = "hotel_count"
	StepDistance     Step = "distance"
	StepPriceCeiling Step = "price_ceiling"
	StepPersons      Step = "persons"
	StepPhotoCount   Step = "photo_count"
)

// Calendar identifiers carried inside calendar callback payloads.
const (
	CalendarCheckIn  = "calendar_in"
	CalendarCheckOut = "calendar_out"
)

// Callback keys for the inline keyboards the dialogue produces. The
// payload is the id the label stands for.
const (
	KeyLocale  = "loc"
	KeyCity    = "city"
	KeyHotel   = "hot"
	KeyPhotos  = "hpic"
	KeyHistory = "his"
	KeyCal     = "cal"
)

// Button is one inline choice: a label and the callback key/payload it
// fires.
type Button struct {
	Label   string
	Key     string
	Payload string
}

// CalendarRequest asks the transport layer to render a month calendar.
type CalendarRequest struct {
	Title string
	Name  string
}

// Outgoing is one message for the transport layer to deliver.
type Outgoing struct {
	Text     string
	Buttons  []Button
	Calendar *CalendarRequest
	Photos   []string
}

// Result bundles the messages to send and the text step the chat moves
// to.
type Result struct {
	Messages []Outgoing
	Next     Step
}

func textMessage(text string) Outgoing {
	return Outgoing{Text: text}
}

func reply(next Step, msgs ...Outgoing) Result {
	return Result{Messages: msgs, Next: next}
}
