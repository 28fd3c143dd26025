package transport

// Kind discriminates the content variants the bridge understands. The zero
// value is KindUnknown so content decoded from an unrecognized wire payload
// falls into the catch-all branch instead of masquerading as text.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindPhoto
	KindDocument
	KindAudio
	KindVideo
	KindVideoNote
	KindVoice
	KindAnimation
	KindSticker
	KindContact
	KindLocation
	KindVenue
	KindPoll
	KindGame
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindText:      "text",
	KindPhoto:     "photo",
	KindDocument:  "document",
	KindAudio:     "audio",
	KindVideo:     "video",
	KindVideoNote: "video_note",
	KindVoice:     "voice",
	KindAnimation: "animation",
	KindSticker:   "sticker",
	KindContact:   "contact",
	KindLocation:  "location",
	KindVenue:     "venue",
	KindPoll:      "poll",
	KindGame:      "game",
}

// String returns a stable label for logs, metrics, and the wire format.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Entity marks a formatted span inside text or a caption (bold, link, ...).
type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
}

// PhotoSize is one resolution variant of a photo.
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Location is a geographic point, optionally live.
type Location struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	HorizontalAccuracy   float64 `json:"horizontal_accuracy,omitempty"`
	LivePeriod           int     `json:"live_period,omitempty"`
	Heading              int     `json:"heading,omitempty"`
	ProximityAlertRadius int     `json:"proximity_alert_radius,omitempty"`
}

// Venue is a location annotated with a place.
type Venue struct {
	Location        Location `json:"location"`
	Title           string   `json:"title"`
	Address         string   `json:"address"`
	FoursquareID    string   `json:"foursquare_id,omitempty"`
	FoursquareType  string   `json:"foursquare_type,omitempty"`
	GooglePlaceID   string   `json:"google_place_id,omitempty"`
	GooglePlaceType string   `json:"google_place_type,omitempty"`
}

// Contact is a shared phone-book entry.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	VCard       string `json:"vcard,omitempty"`
}

// VideoNote is a short round video clip.
type VideoNote struct {
	FileID   string `json:"file_id"`
	Length   int    `json:"length"`
	Duration int    `json:"duration"`
}

// Content is the tagged union of everything a message can carry. Kind selects
// the variant; only the fields belonging to that variant are meaningful. The
// JSON encoding doubles as the immutable snapshot stored with each message
// link, so fields must stay backward-decodable.
type Content struct {
	Kind Kind `json:"kind"`

	// Text variant, and formatted service replies. Mode "html" asks the
	// transport to interpret Text as markup instead of using Entities.
	Text     string   `json:"text,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
	Mode     string   `json:"mode,omitempty"`

	// Media variants referenced by an opaque transport file id.
	FileID          string   `json:"file_id,omitempty"`
	Caption         string   `json:"caption,omitempty"`
	CaptionEntities []Entity `json:"caption_entities,omitempty"`
	Spoiler         bool     `json:"spoiler,omitempty"`

	// Photo variants as offered by the transport, any order.
	Photos []PhotoSize `json:"photos,omitempty"`

	Contact   *Contact   `json:"contact,omitempty"`
	Location  *Location  `json:"location,omitempty"`
	Venue     *Venue     `json:"venue,omitempty"`
	VideoNote *VideoNote `json:"video_note,omitempty"`
}

// Text builds a plain text content.
func Text(s string) Content { return Content{Kind: KindText, Text: s} }

// HTML builds a text content rendered as HTML markup by the transport. Used
// for service output such as the info card and note listings; the caller is
// responsible for sanitizing interpolated values.
func HTML(s string) Content { return Content{Kind: KindText, Text: s, Mode: "html"} }

// BestPhoto picks the highest-resolution variant by pixel area. The second
// return is false when the content carries no photo sizes at all, in which
// case the event is dropped rather than forwarded.
func (c Content) BestPhoto() (PhotoSize, bool) {
	var best PhotoSize
	found := false
	for _, p := range c.Photos {
		if !found || p.Width*p.Height > best.Width*best.Height {
			best, found = p, true
		}
	}
	return best, found
}
