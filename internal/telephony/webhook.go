package telephony

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/victorhinojosa/voice-ivr-payment/internal/conversation"
)

// TwilioVoiceForm captures the subset of voice webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
//
// Provider-adapter only; no conversation decisions are made here.
type TwilioVoiceForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	CallStatus string
	Direction  string

	// SpeechResult is the transcribed utterance from <Gather input="speech">.
	// Empty when the caller stayed silent.
	SpeechResult string

	// Confidence is Twilio's own ASR confidence (0.0-1.0), kept raw.
	// Our decision confidence comes from the classifier, not from here.
	Confidence string
}

var ErrMissingCallSid = errors.New("telephony: CallSid missing from webhook payload")

func ParseTwilioVoiceForm(r *http.Request) (TwilioVoiceForm, error) {
	if err := r.ParseForm(); err != nil {
		return TwilioVoiceForm{}, err
	}
	f := TwilioVoiceForm{
		CallSid:      strings.TrimSpace(r.PostFormValue("CallSid")),
		AccountSid:   r.PostFormValue("AccountSid"),
		From:         strings.TrimSpace(r.PostFormValue("From")),
		To:           strings.TrimSpace(r.PostFormValue("To")),
		CallStatus:   r.PostFormValue("CallStatus"),
		Direction:    r.PostFormValue("Direction"),
		SpeechResult: r.PostFormValue("SpeechResult"),
		Confidence:   r.PostFormValue("Confidence"),
	}
	return f, nil
}

// CallKey derives the stable per-call identifier. Twilio's CallSid is
// constant for every webhook of one physical call, which is exactly the
// contract the at-most-one-record invariant depends on.
func (f TwilioVoiceForm) CallKey() (string, error) {
	if f.CallSid == "" {
		return "", ErrMissingCallSid
	}
	return f.CallSid, nil
}

func (f TwilioVoiceForm) ToStartInput() (conversation.StartInput, error) {
	key, err := f.CallKey()
	if err != nil {
		return conversation.StartInput{}, err
	}
	return conversation.StartInput{CallID: key, CallerPhone: f.From}, nil
}

func (f TwilioVoiceForm) ToTurn(receivedAt time.Time) (conversation.Turn, error) {
	key, err := f.CallKey()
	if err != nil {
		return conversation.Turn{}, err
	}
	return conversation.Turn{
		CallID:      key,
		CallerPhone: f.From,
		Utterance:   f.SpeechResult,
		ReceivedAt:  receivedAt,
	}, nil
}
