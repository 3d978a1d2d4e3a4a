package entity

// Color is the semantic color bar of an attachment. The dispatcher decides how
// it is written on the wire.
type Color string

// Attachment colors. Creation and success are green, destructive actions red,
// everything else yellow.
const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Field is a single name/value pair rendered inside an attachment.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Attachment is a colored block of a chat message.
type Attachment struct {
	Fallback  string
	Color     Color
	Title     string
	TitleLink string
	Text      string
	Fields    []Field
	// Timestamp is the event time in Unix seconds.
	Timestamp int64
}

// OutboundMessage is the formatted notification handed to the dispatcher.
type OutboundMessage struct {
	Text        string
	Attachments []Attachment
}
