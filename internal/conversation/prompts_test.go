package conversation

import (
	"strings"
	"testing"

	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
)

const testPlan = "$200/month for 5 months"

func TestRenderReply_TerminalStatusesStopGathering(t *testing.T) {
	for _, status := range []callstore.Status{
		callstore.StatusConfirmed,
		callstore.StatusNeedsNegotiation,
		callstore.StatusNoResponse,
	} {
		rep := RenderReply(status, testPlan, 1000)
		if rep.GatherMore {
			t.Fatalf("status %q should end the conversation", status)
		}
		if rep.Text == "" {
			t.Fatalf("status %q produced an empty prompt", status)
		}
	}
}

func TestRenderReply_ClarificationRepeatsOffer(t *testing.T) {
	rep := RenderReply(callstore.StatusPendingClarification, testPlan, 1000)
	if !rep.GatherMore {
		t.Fatalf("clarification must keep gathering speech")
	}
	if !strings.Contains(rep.Text, testPlan) {
		t.Fatalf("clarification prompt must repeat the offer: %q", rep.Text)
	}
	if !strings.Contains(rep.Text, "$1000") {
		t.Fatalf("clarification prompt must state the balance: %q", rep.Text)
	}
}

func TestRenderReply_ConfirmedMentionsPlan(t *testing.T) {
	rep := RenderReply(callstore.StatusConfirmed, testPlan, 1000)
	if !strings.Contains(rep.Text, testPlan) {
		t.Fatalf("confirmation should restate the plan: %q", rep.Text)
	}
}

func TestGreetingReply(t *testing.T) {
	rep := GreetingReply(testPlan, 1000)
	if !rep.GatherMore {
		t.Fatalf("greeting must gather speech")
	}
	for _, want := range []string{"$1000", testPlan} {
		if !strings.Contains(rep.Text, want) {
			t.Fatalf("greeting missing %q: %q", want, rep.Text)
		}
	}
}
