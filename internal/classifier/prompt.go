package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

const auditSystemPrompt = `You are the continuity auditor for a serialized novel.
You receive the text of one chapter and a digest of the currently open
narrative threads. For every thread the chapter touches, and for every new
obligation the chapter opens, emit exactly one event.

Respond with a single JSON object:
{
  "events": [
    {
      "signature": "stable_snake_case_key",
      "title": "short human title",
      "action": "CREATE | UPDATE | RESOLVE | STALL",
      "category": "SOVEREIGN | MAJOR | MINOR | SEED",
      "progress_type": "NONE | INFO | ESCALATION | RESOLUTION",
      "summary_delta": "one sentence on what this chapter did to the thread",
      "participants": ["character names"],
      "resolution_criteria": "condition that must hold before RESOLVE, if any",
      "justification": "why you chose this action; if resolving a thread that
        has resolution criteria, state explicitly how the criteria are satisfied"
    }
  ],
  "consistency_warnings": ["free-text continuity problems you noticed"]
}

Rules:
- Reuse the digest's signature for existing threads; never invent a second
  signature for the same obligation.
- RESOLVE only when the chapter actually pays the thread off on the page.
- Do not emit events for threads the chapter never touches.`

const narrateSystemPrompt = `You are the story director for a serialized novel.
You receive the scheduling plan for the next chapter: which threads it must
address, which resolutions are forbidden, and which threads are going stale.

Respond with a single JSON object:
{
  "primary_goal": "one sentence for what the chapter is about",
  "anchors": [
    {
      "signature": "thread signature from the plan",
      "required_action": "PROGRESS | ESCALATE | RESOLVE | FORESHADOW | TOUCH",
      "mandatory_detail": "one concrete beat the chapter must include"
    }
  ],
  "intensity": "calm | building | intense | climactic",
  "tension_curve": "short description of the chapter's tension shape"
}

Never propose resolving a thread the plan forbids from resolving.`

// buildAuditPrompt renders the user turn for the chapter audit call.
func buildAuditPrompt(req AuditRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Novel: %s\nChapter: %d\n\n", req.NovelID, req.Chapter)

	sb.WriteString("## Open threads\n")
	if len(req.Threads) == 0 {
		sb.WriteString("(none yet)\n")
	}
	for _, t := range req.Threads {
		digest, _ := json.Marshal(t)
		sb.Write(digest)
		sb.WriteByte('\n')
	}

	sb.WriteString("\n## Chapter text\n")
	sb.WriteString(req.ChapterText)

	return sb.String()
}

// buildNarratePrompt renders the user turn for the directive call.
func buildNarratePrompt(req NarrateRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Novel: %s\nPlanning chapter: %d\n\n", req.NovelID, req.Chapter)

	sb.WriteString("## Threads this chapter must address\n")
	for _, c := range req.Selection.Primary {
		fmt.Fprintf(&sb, "- %s (%s/%s, urgency %.0f, horizon %s)\n",
			c.Signature, c.Category, c.Status, c.Urgency, c.Horizon)
	}

	if len(req.Selection.ForbiddenResolutions) > 0 {
		sb.WriteString("\n## Forbidden resolutions\n")
		for _, f := range req.Selection.ForbiddenResolutions {
			fmt.Fprintf(&sb, "- %s: %s\n", f.Signature, f.Reason)
		}
	}

	if len(req.Selection.StaleWarnings) > 0 {
		sb.WriteString("\n## Going stale\n")
		for _, c := range req.Selection.StaleWarnings {
			fmt.Fprintf(&sb, "- %s (quiet for %d chapters)\n", c.Signature, c.Gap)
		}
	}

	if len(req.Selection.Reasoning) > 0 {
		sb.WriteString("\n## Scheduling reasoning\n")
		for _, r := range req.Selection.Reasoning {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	return sb.String()
}
