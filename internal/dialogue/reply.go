package dialogue

// Message is a single outbound SMS, optionally carrying a media URL.
type Message struct {
	Body     string
	MediaURL string
}

// Reply collects the outbound messages produced by one inbound message.
type Reply struct {
	Messages []Message
}

func (r *Reply) Text(body string) {
	r.Messages = append(r.Messages, Message{Body: body})
}

func (r *Reply) TextWithMedia(body, mediaURL string) {
	r.Messages = append(r.Messages, Message{Body: body, MediaURL: mediaURL})
}
