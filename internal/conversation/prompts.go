package conversation

import (
	"fmt"

	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
)

// Reply is the outbound instruction handed to the telephony boundary.
// GatherMore tells the boundary to keep the line open for another utterance.
type Reply struct {
	Text       string `json:"text"`
	GatherMore bool   `json:"gather_more"`
}

// GreetingReply opens the call with the payment plan offer.
func GreetingReply(plan string, amountOwed float64) Reply {
	return Reply{
		Text: fmt.Sprintf(
			"Hello, this is a courtesy call regarding your outstanding balance of $%.0f. "+
				"We'd like to propose a payment plan of %s. Would this arrangement work for you?",
			amountOwed, plan,
		),
		GatherMore: true,
	}
}

// RenderReply maps a status onto the next system utterance. Pure function;
// the engine's decision logic stays testable independently of wording.
func RenderReply(status callstore.Status, plan string, amountOwed float64) Reply {
	switch status {
	case callstore.StatusConfirmed:
		return Reply{
			Text: fmt.Sprintf(
				"Excellent! We've confirmed your payment plan of %s. "+
					"You'll receive a confirmation by text message shortly. Thank you!",
				plan,
			),
		}
	case callstore.StatusNeedsNegotiation:
		return Reply{
			Text: "I understand. Let me connect you with a specialist who can discuss " +
				"alternative payment arrangements. Please hold.",
		}
	case callstore.StatusPendingClarification:
		// Repeat the offer verbatim and ask again.
		return Reply{
			Text: fmt.Sprintf(
				"Of course. You currently owe $%.0f. We're proposing a payment plan of %s. "+
					"This would clear your balance. Would you like to accept this plan?",
				amountOwed, plan,
			),
			GatherMore: true,
		}
	case callstore.StatusNoResponse:
		return Reply{
			Text: "We didn't receive a clear response. We'll follow up with you shortly. Goodbye.",
		}
	default:
		return GreetingReply(plan, amountOwed)
	}
}
