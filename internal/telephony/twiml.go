package telephony

import (
	"encoding/xml"
	"fmt"
)

// TwiML rendering. Built by hand on encoding/xml: the documents this
// service produces are a tiny, fixed subset of the vocabulary and a full
// provider SDK would be a heavyweight dependency for three verbs.

type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Verbs   []interface{} `xml:",omitempty"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	Say           twimlSay `xml:"Say"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// GatherOptions shape the <Gather> verb emitted when the conversation
// expects another utterance.
type GatherOptions struct {
	// Action is the webhook Twilio posts the speech result to.
	Action string

	Voice         string
	SpeechTimeout string
	Language      string

	// FallbackText is spoken when <Gather> times out without speech; the
	// respond webhook then arrives with an empty SpeechResult and the
	// engine closes the call.
	FallbackText string
}

func (o GatherOptions) withDefaults() GatherOptions {
	if o.Action == "" {
		o.Action = "/webhooks/twilio/respond"
	}
	if o.Voice == "" {
		o.Voice = "Polly.Joanna"
	}
	if o.SpeechTimeout == "" {
		o.SpeechTimeout = "3"
	}
	if o.Language == "" {
		o.Language = "en-US"
	}
	if o.FallbackText == "" {
		o.FallbackText = "We didn't receive a response. We'll follow up with you shortly. Goodbye."
	}
	return o
}

// RenderPrompt builds the TwiML for one conversational reply. gatherMore
// selects between "speak and listen" and "speak and hang up".
func RenderPrompt(text string, gatherMore bool, opts GatherOptions) ([]byte, error) {
	opts = opts.withDefaults()

	resp := twimlResponse{}
	if gatherMore {
		resp.Verbs = append(resp.Verbs,
			twimlGather{
				Input:         "speech",
				Action:        opts.Action,
				Method:        "POST",
				SpeechTimeout: opts.SpeechTimeout,
				Language:      opts.Language,
				Say:           twimlSay{Voice: opts.Voice, Text: text},
			},
			// Reached only when Gather collects nothing.
			twimlSay{Voice: opts.Voice, Text: opts.FallbackText},
			twimlHangup{},
		)
	} else {
		resp.Verbs = append(resp.Verbs,
			twimlSay{Voice: opts.Voice, Text: text},
			twimlHangup{},
		)
	}
	return encodeTwiML(resp)
}

// RenderApology is the degraded-mode document returned when the engine
// cannot persist the turn. The caller hears a human sentence, not a 500.
func RenderApology(opts GatherOptions) ([]byte, error) {
	opts = opts.withDefaults()
	return encodeTwiML(twimlResponse{Verbs: []interface{}{
		twimlSay{
			Voice: opts.Voice,
			Text:  "We're sorry, we're unable to process your call right now. We'll follow up with you shortly. Goodbye.",
		},
		twimlHangup{},
	}})
}

func encodeTwiML(resp twimlResponse) ([]byte, error) {
	body, err := xml.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("telephony: encode twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
