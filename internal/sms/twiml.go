package sms

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"

	"github.com/masshrc/chatbot/internal/dialogue"
)

// RenderReply serializes an engine reply as a TwiML messaging response.
func RenderReply(reply *dialogue.Reply) (string, error) {
	elements := make([]twiml.Element, 0, len(reply.Messages))
	for _, msg := range reply.Messages {
		message := &twiml.MessagingMessage{}
		inner := []twiml.Element{&twiml.MessagingBody{Message: msg.Body}}
		if msg.MediaURL != "" {
			inner = append(inner, &twiml.MessagingMedia{Url: msg.MediaURL})
		}
		message.InnerElements = inner
		elements = append(elements, message)
	}
	doc, err := twiml.Messages(elements)
	if err != nil {
		return "", fmt.Errorf("render twiml: %w", err)
	}
	return doc, nil
}

// RenderApology is the fallback response when message handling fails. The
// webhook still answers 200 so the carrier does not retry.
func RenderApology() (string, error) {
	return RenderReply(&dialogue.Reply{
		Messages: []dialogue.Message{{Body: "An error occurred. Please try again later."}},
	})
}
