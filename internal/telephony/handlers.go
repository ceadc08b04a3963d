package telephony

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/victorhinojosa/voice-ivr-payment/internal/conversation"
	"github.com/victorhinojosa/voice-ivr-payment/pkg/logger"
)

// ConversationDriver is the slice of the engine the webhook layer needs.
type ConversationDriver interface {
	Start(ctx context.Context, in conversation.StartInput) (conversation.Reply, error)
	HandleTurn(ctx context.Context, t conversation.Turn) (conversation.Reply, error)
}

// Handlers serve the Twilio voice webhooks. Every response is TwiML,
// status 200: Twilio treats non-2xx as an application error and plays its
// own error message, so even degraded replies go out as valid documents.
type Handlers struct {
	engine ConversationDriver
	gather GatherOptions

	now func() time.Time
}

func NewHandlers(engine ConversationDriver, gather GatherOptions) *Handlers {
	return &Handlers{engine: engine, gather: gather.withDefaults(), now: time.Now}
}

// HandleVoice answers the initial call webhook with the greeting.
func (h *Handlers) HandleVoice(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseTwilioVoiceForm(c.Request)
	if err != nil {
		log.Warn("voice webhook: malformed form", "err", err)
		h.apology(c)
		return
	}
	in, err := form.ToStartInput()
	if err != nil {
		log.Warn("voice webhook: rejected", "err", err)
		h.apology(c)
		return
	}

	reply, err := h.engine.Start(c.Request.Context(), in)
	if err != nil {
		log.Error("voice webhook: start failed", "call_id", in.CallID, "err", err)
		h.apology(c)
		return
	}

	h.twiml(c, reply)
}

// HandleSpeech answers the speech-result webhook with the next prompt.
func (h *Handlers) HandleSpeech(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseTwilioVoiceForm(c.Request)
	if err != nil {
		log.Warn("respond webhook: malformed form", "err", err)
		h.apology(c)
		return
	}
	turn, err := form.ToTurn(h.now())
	if err != nil {
		log.Warn("respond webhook: rejected", "err", err)
		h.apology(c)
		return
	}

	reply, err := h.engine.HandleTurn(c.Request.Context(), turn)
	if err != nil {
		log.Error("respond webhook: turn failed", "call_id", turn.CallID, "err", err)
		h.apology(c)
		return
	}

	h.twiml(c, reply)
}

func (h *Handlers) twiml(c *gin.Context, reply conversation.Reply) {
	body, err := RenderPrompt(reply.Text, reply.GatherMore, h.gather)
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "err", err)
		h.apology(c)
		return
	}
	c.Data(http.StatusOK, "application/xml", body)
}

func (h *Handlers) apology(c *gin.Context) {
	body, err := RenderApology(h.gather)
	if err != nil {
		// encoding/xml failing on a static document would be a programming
		// error; fall back to an empty response rather than a 5xx.
		c.Data(http.StatusOK, "application/xml", []byte(`<?xml version="1.0" encoding="UTF-8"?><Response/>`))
		return
	}
	c.Data(http.StatusOK, "application/xml", body)
}
